// Package clone implements the transfer engine that moves a full memory
// image between host and radio over a serial transport.
//
// One Engine state machine serves every supported radio; per-radio behavior
// (identification handshake, block size and framing, checksum algorithm,
// acknowledgments, timing and retry limits) is supplied as an immutable
// Protocol value by the radio's driver. New radios are new protocol data,
// not new engine code.
//
// # Sessions
//
// A download fills a fresh memory map from the radio; an upload drains an
// edited map back. Each call runs one session to a terminal state:
//
//	Idle -> Handshaking -> TransferringBlock ... -> Finishing -> Completed
//	                    \-> Aborted (mismatch, exhausted retries, cancel)
//
// The engine performs blocking I/O and is meant to run on one dedicated
// goroutine per session; a radio link is inherently serial and concurrent
// sessions against one transport are forbidden. Progress is reported
// through a callback after each committed block, and cancellation (via the
// context) is honored between blocks only, never mid-block.
//
// # Failure semantics
//
// A failed identification exchange aborts immediately with
// *ProtocolMismatchError: the engine never proceeds against a radio that
// answered as the wrong model. Per-block checksum failures and timeouts are
// retried up to the protocol's limit and never surfaced individually; after
// the limit the session aborts with *TransferError carrying the bytes and
// blocks completed before the failure, and a download additionally returns
// the partially filled map so the caller can decide whether to keep it.
package clone
