// Package log provides structured protocol event logging for the
// Switchbot stack.
//
// Every layer accepts an optional Logger and emits Events: raw frame
// writes and notifications at the transport boundary, sealed envelopes
// at the crypto layer, session phase transitions, and errors. Pass nil
// or NoopLogger to disable logging entirely; the stack never logs on
// its own account.
//
// Events are values. FileLogger persists them as a CBOR stream with
// integer keys for compact capture of long sessions; SlogAdapter mirrors
// them to a log/slog logger for console debugging; MultiLogger fans out
// to both.
package log
