package memmap

import (
	"fmt"
	"strings"
)

// MemoryMap is a radio's full memory image: a mutable, fixed-size byte
// buffer. The size is set at construction per radio model and never changes.
//
// MemoryMap is not safe for concurrent use. Callers must serialize clone
// transfers and editing against the same map.
type MemoryMap struct {
	data []byte
}

// New creates a zero-filled MemoryMap of the given size in bytes.
func New(size int) *MemoryMap {
	if size < 0 {
		panic(fmt.Sprintf("memmap: negative size %d", size))
	}
	return &MemoryMap{data: make([]byte, size)}
}

// NewFromBytes creates a MemoryMap initialized with a copy of data.
// The map's size is len(data).
func NewFromBytes(data []byte) *MemoryMap {
	m := New(len(data))
	copy(m.data, data)
	return m
}

// Len returns the size of the memory image in bytes.
func (m *MemoryMap) Len() int {
	return len(m.data)
}

// ReadAt returns a copy of length bytes starting at offset.
// Fails with *BoundsError if the range does not fit inside the map.
func (m *MemoryMap) ReadAt(offset, length int) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.data[offset:offset+length])
	return out, nil
}

// WriteAt copies data into the map starting at offset.
// Fails with *BoundsError if the range does not fit inside the map; on
// failure no bytes are written.
func (m *MemoryMap) WriteAt(offset int, data []byte) error {
	if err := m.check(offset, len(data)); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

// Byte returns the single byte at offset.
func (m *MemoryMap) Byte(offset int) (byte, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

// SetByte sets the single byte at offset.
func (m *MemoryMap) SetByte(offset int, b byte) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.data[offset] = b
	return nil
}

// Fill sets every byte of the map to b. Clone drivers typically pre-fill
// a fresh map with 0xFF before a download so untransferred regions read as
// erased flash.
func (m *MemoryMap) Fill(b byte) {
	for i := range m.data {
		m.data[i] = b
	}
}

// Bytes returns a copy of the entire image. Intended for external
// persistence; mutations of the returned slice do not affect the map.
func (m *MemoryMap) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Clone returns an independent copy of the map. There is no copy-on-write
// sharing; callers needing a snapshot before an edit or upload must clone
// explicitly.
func (m *MemoryMap) Clone() *MemoryMap {
	return NewFromBytes(m.data)
}

// HexDump returns a printable hex representation of the byte range
// [start, end). Used when logging transferred blocks.
func (m *MemoryMap) HexDump(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(m.data) || end <= 0 {
		end = len(m.data)
	}
	var sb strings.Builder
	for line := start &^ 0x0F; line < end; line += 16 {
		fmt.Fprintf(&sb, "%04X:", line)
		for i := line; i < line+16 && i < end; i++ {
			if i < start {
				sb.WriteString("   ")
				continue
			}
			fmt.Fprintf(&sb, " %02X", m.data[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// check validates that [offset, offset+length) fits inside the map.
// A zero-length range is valid anywhere up to and including the end.
func (m *MemoryMap) check(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(m.data) {
		return &BoundsError{Offset: offset, Length: length, Size: len(m.data)}
	}
	return nil
}
