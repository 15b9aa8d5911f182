package bitfield

import (
	"fmt"

	"github.com/kf7lze/radioclone/memmap"
)

// Kind identifies the value transform a Field uses.
type Kind int

const (
	// KindUint is an unsigned fixed-width integer.
	KindUint Kind = iota

	// KindInt is a signed (two's complement) fixed-width integer.
	KindInt

	// KindBCD is a binary-coded decimal value: one decimal digit per nibble.
	KindBCD

	// KindEnum is an integer code mapped through a fixed code/label table.
	KindEnum

	// KindFlags is a set of named single-bit flags.
	KindFlags

	// KindString is a fixed-length ASCII string with pad/terminator rules.
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBCD:
		return "bcd"
	case KindEnum:
		return "enum"
	case KindFlags:
		return "flags"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Endian selects the byte order of multi-byte integer and BCD fields.
type Endian int

const (
	// BigEndian stores the most significant byte first.
	BigEndian Endian = iota

	// LittleEndian stores the least significant byte first.
	LittleEndian
)

// EnumPolicy controls how an enum field decodes a code absent from its table.
type EnumPolicy int

const (
	// EnumStrict fails the decode with *DecodeError.
	EnumStrict EnumPolicy = iota

	// EnumLenient decodes an unmapped code to the UnknownValue sentinel.
	EnumLenient
)

// UnknownValue is the sentinel label an EnumLenient field decodes an
// unmapped code to. Encoding UnknownValue is always rejected.
const UnknownValue = "(unknown)"

// EnumItem is one entry of an enum field's code/label table.
type EnumItem struct {
	Code  uint64
	Label string
}

// Field is an immutable descriptor binding a named value to a bit range of
// a memory map. Fields are defined per radio model and shared read-only
// across every memory map instance of that model.
//
// For sub-byte integer, enum and flags fields, BitOffset counts from the
// least significant bit of the byte at Offset, and BitOffset+BitWidth must
// not exceed 8. Whole-byte fields have BitOffset 0 and a BitWidth that is a
// multiple of 8.
type Field struct {
	Name string

	// Offset is the byte offset of element 0 within the memory map.
	Offset int

	// BitOffset and BitWidth locate integer-backed values. BitWidth is
	// ignored by KindBCD and KindString.
	BitOffset int
	BitWidth  int

	// Endian applies to multi-byte KindUint/KindInt and to the byte order
	// of KindBCD.
	Endian Endian

	Kind Kind

	// Count and Stride describe repeated fields: Count elements, each
	// Stride bytes apart, starting at Offset. A zero Count means scalar.
	Count  int
	Stride int

	// Digits is the number of decimal digits of a KindBCD field. Two
	// digits occupy one byte; an odd digit count leaves the most
	// significant nibble unused and it must decode as zero.
	Digits int

	// Enum is the code/label table of a KindEnum field, and Policy its
	// unmapped-code behavior.
	Enum   []EnumItem
	Policy EnumPolicy

	// FlagNames names the bits of a KindFlags field, index 0 being the
	// least significant bit of the field.
	FlagNames []string

	// Length, Pad and Term describe KindString fields: Length bytes at
	// Offset, encoded text padded with Pad. If HasTerm is set, decode
	// stops at the first Term byte and encode writes Term after the text.
	Length  int
	Pad     byte
	Term    byte
	HasTerm bool
}

// Elements returns the number of elements of the field: Count for repeated
// fields, 1 for scalars.
func (f *Field) Elements() int {
	if f.Count <= 0 {
		return 1
	}
	return f.Count
}

// ByteLen returns the number of bytes one element of the field occupies.
func (f *Field) ByteLen() int {
	switch f.Kind {
	case KindBCD:
		return (f.Digits + 1) / 2
	case KindString:
		return f.Length
	default:
		return (f.BitOffset + f.BitWidth + 7) / 8
	}
}

// Validate checks the descriptor's internal consistency. Driver registries
// validate every field once at registration; Decode/Encode assume a valid
// descriptor.
func (f *Field) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("bitfield: field has no name")
	}
	if f.Offset < 0 {
		return fmt.Errorf("bitfield: field %q: negative offset %d", f.Name, f.Offset)
	}
	if f.Count > 1 && f.Stride < f.ByteLen() {
		return fmt.Errorf("bitfield: field %q: stride %d smaller than element size %d",
			f.Name, f.Stride, f.ByteLen())
	}

	switch f.Kind {
	case KindUint, KindInt:
		return f.validateIntShape()
	case KindEnum:
		if err := f.validateIntShape(); err != nil {
			return err
		}
		if len(f.Enum) == 0 {
			return fmt.Errorf("bitfield: field %q: enum field with empty table", f.Name)
		}
		max := maxUint(f.BitWidth)
		seen := make(map[string]bool, len(f.Enum))
		for _, it := range f.Enum {
			if it.Code > max {
				return fmt.Errorf("bitfield: field %q: enum code %d does not fit in %d bits",
					f.Name, it.Code, f.BitWidth)
			}
			if it.Label == UnknownValue {
				return fmt.Errorf("bitfield: field %q: enum label collides with unknown sentinel", f.Name)
			}
			if seen[it.Label] {
				return fmt.Errorf("bitfield: field %q: duplicate enum label %q", f.Name, it.Label)
			}
			seen[it.Label] = true
		}
	case KindFlags:
		if err := f.validateIntShape(); err != nil {
			return err
		}
		if len(f.FlagNames) != f.BitWidth {
			return fmt.Errorf("bitfield: field %q: %d flag names for %d bits",
				f.Name, len(f.FlagNames), f.BitWidth)
		}
	case KindBCD:
		if f.Digits < 1 {
			return fmt.Errorf("bitfield: field %q: bcd field needs at least one digit", f.Name)
		}
	case KindString:
		if f.Length < 1 {
			return fmt.Errorf("bitfield: field %q: string field needs a positive length", f.Name)
		}
	default:
		return fmt.Errorf("bitfield: field %q: unknown kind %d", f.Name, int(f.Kind))
	}
	return nil
}

func (f *Field) validateIntShape() error {
	if f.BitWidth < 1 || f.BitWidth > 64 {
		return fmt.Errorf("bitfield: field %q: bit width %d outside 1..64", f.Name, f.BitWidth)
	}
	if f.BitOffset < 0 {
		return fmt.Errorf("bitfield: field %q: negative bit offset %d", f.Name, f.BitOffset)
	}
	if f.BitOffset > 0 && f.BitOffset+f.BitWidth > 8 {
		return fmt.Errorf("bitfield: field %q: sub-byte field spans byte boundary (bit %d width %d)",
			f.Name, f.BitOffset, f.BitWidth)
	}
	if f.BitOffset == 0 && f.BitWidth > 8 && f.BitWidth%8 != 0 {
		return fmt.Errorf("bitfield: field %q: multi-byte field width %d is not a whole number of bytes",
			f.Name, f.BitWidth)
	}
	return nil
}

// elemOffset returns the byte offset of element i, checking the index
// against the element count.
func (f *Field) elemOffset(i int) (int, error) {
	if i < 0 || i >= f.Elements() {
		return 0, &DecodeError{
			Field:  f.Name,
			Reason: fmt.Sprintf("element index %d outside [0, %d)", i, f.Elements()),
		}
	}
	return f.Offset + i*f.Stride, nil
}

// Decode reads element 0 of the field from mm. The dynamic type of the
// returned value depends on the kind: int64 for KindUint/KindInt/KindBCD,
// string for KindEnum/KindString, []string for KindFlags.
func (f *Field) Decode(mm *memmap.MemoryMap) (interface{}, error) {
	return f.DecodeAt(mm, 0)
}

// Encode validates v and writes element 0 of the field into mm.
func (f *Field) Encode(mm *memmap.MemoryMap, v interface{}) error {
	return f.EncodeAt(mm, 0, v)
}

// DecodeAt reads element i of a repeated field.
func (f *Field) DecodeAt(mm *memmap.MemoryMap, i int) (interface{}, error) {
	off, err := f.elemOffset(i)
	if err != nil {
		return nil, err
	}

	switch f.Kind {
	case KindUint, KindInt:
		return f.decodeInt(mm, off)
	case KindBCD:
		return f.decodeBCD(mm, off)
	case KindEnum:
		return f.decodeEnum(mm, off)
	case KindFlags:
		return f.decodeFlags(mm, off)
	case KindString:
		return f.decodeString(mm, off)
	default:
		return nil, &DecodeError{Field: f.Name, Reason: fmt.Sprintf("unknown kind %d", int(f.Kind))}
	}
}

// EncodeAt validates v and writes element i of a repeated field. The bytes
// of mm are only touched after v has validated against the field's domain;
// a failed encode leaves the map unchanged.
func (f *Field) EncodeAt(mm *memmap.MemoryMap, i int, v interface{}) error {
	off, err := f.elemOffset(i)
	if err != nil {
		return &EncodeError{Field: f.Name, Reason: err.(*DecodeError).Reason}
	}

	switch f.Kind {
	case KindUint, KindInt:
		return f.encodeInt(mm, off, v)
	case KindBCD:
		return f.encodeBCD(mm, off, v)
	case KindEnum:
		return f.encodeEnum(mm, off, v)
	case KindFlags:
		return f.encodeFlags(mm, off, v)
	case KindString:
		return f.encodeString(mm, off, v)
	default:
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("unknown kind %d", int(f.Kind))}
	}
}

func maxUint(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}
