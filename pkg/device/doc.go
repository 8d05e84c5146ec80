// Package device provides typed facades over the protocol stack, one
// per supported model family.
//
// Every operation follows the same path: capability check, frame
// construction, optional encryption, session execution, response
// decode. Capability violations fail before any radio I/O. Facades
// cache the latest advertisement snapshot so applications can blend
// passive state with command responses.
//
// The Lock facade cannot be constructed without an encryption key;
// its commands and responses travel inside envelopes.
package device
