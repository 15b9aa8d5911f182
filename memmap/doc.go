// Package memmap provides the byte-level memory image model for radio
// programming.
//
// A MemoryMap holds a radio's full configuration memory as a single
// fixed-size byte buffer. It is populated by a clone download, read and
// mutated through the bitfield and settings packages while editing, and
// drained back to the radio by a clone upload.
//
// # Usage
//
//	mm := memmap.New(0x0400)
//	mm.Fill(0xFF)
//	err := mm.WriteAt(0x10, block)
//	data, err := mm.ReadAt(0x10, 8)
//
// All accesses are bounds-checked: an offset/length pair that does not fit
// inside the map fails with *BoundsError rather than truncating or growing
// the buffer. The map never resizes after construction.
//
// # Sharing
//
// A MemoryMap is exclusively owned by one editing session. Settings trees
// and field descriptors hold references into it and observe each other's
// writes; callers needing an independent snapshot must use Clone.
package memmap
