package bitfield

import "fmt"

// DecodeError indicates bytes that have no valid interpretation under a
// field's declared kind: a non-decimal BCD nibble, an unmapped enum code
// under EnumStrict, a non-printable string byte. Recoverable; the memory
// map is left as it was.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Field, e.Reason)
}

// EncodeError indicates a candidate value outside a field's valid domain.
// The memory map is never touched by a failed encode.
type EncodeError struct {
	Field  string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %s", e.Field, e.Reason)
}
