package clone

import (
	"errors"
	"fmt"
)

// ErrCancelled reports a session ended by the caller between blocks. It is
// the cause carried by a TransferError after a user cancel; data already
// committed to the memory map is preserved.
var ErrCancelled = errors.New("clone: cancelled by caller")

// ProtocolMismatchError indicates the identification handshake failed: the
// radio did not answer, or answered as a different model. Fatal to the
// session, never retried.
type ProtocolMismatchError struct {
	Step     int
	Expected []byte
	Actual   []byte
}

func (e *ProtocolMismatchError) Error() string {
	if len(e.Actual) == 0 {
		return fmt.Sprintf("clone: handshake step %d: no response from radio", e.Step)
	}
	return fmt.Sprintf("clone: handshake step %d: radio answered % X, expected % X",
		e.Step, e.Actual, e.Expected)
}

// ChecksumError is a per-block integrity failure. It is retried inside the
// engine and only surfaces wrapped in a TransferError once the retry
// budget is exhausted.
type ChecksumError struct {
	Addr int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("clone: checksum mismatch on block 0x%04X", e.Addr)
}

// TimeoutError is a bounded read that returned too few bytes. Retried like
// a checksum failure.
type TimeoutError struct {
	Want int
	Got  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("clone: read timed out after %d of %d bytes", e.Got, e.Want)
}

// NakError is a negative (or garbled) acknowledgment from the radio.
// Retried like a checksum failure.
type NakError struct {
	Addr int
	Got  byte
}

func (e *NakError) Error() string {
	return fmt.Sprintf("clone: block 0x%04X not acknowledged (got 0x%02X)", e.Addr, e.Got)
}

// TransferError is the terminal failure of a clone session: a block
// exhausted its retries, the transport died, or the caller cancelled. The
// partial-progress counters let the caller decide whether a partially
// transferred image is worth keeping.
type TransferError struct {
	Direction  Direction
	BytesDone  int
	BlocksDone int
	Err        error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("clone: %s aborted after %d bytes (%d blocks): %v",
		e.Direction, e.BytesDone, e.BlocksDone, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// FinishError reports a failed closing handshake after every block
// transferred. For a download the image is complete and usable; the
// error is informational.
type FinishError struct {
	Err error
}

func (e *FinishError) Error() string {
	return fmt.Sprintf("clone: closing handshake failed: %v", e.Err)
}

func (e *FinishError) Unwrap() error {
	return e.Err
}
