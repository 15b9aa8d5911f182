package memmap

import "fmt"

// BoundsError indicates an access outside the memory map's length.
// It is always a programming or driver-configuration error, never a
// condition to recover from at runtime.
type BoundsError struct {
	Offset int
	Length int
	Size   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("memmap: access [0x%04X, 0x%04X) outside map of %d bytes",
		e.Offset, e.Offset+e.Length, e.Size)
}
