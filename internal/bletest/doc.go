// Package bletest provides scripted transport implementations for
// testing the session and device layers without a radio.
//
// A Transport is configured with per-attempt connect outcomes (accept,
// refuse, hang) and a Handler that turns command writes into
// notification replies. Every connection records its writes for
// assertions, and stray notifications can be injected at any time.
package bletest
