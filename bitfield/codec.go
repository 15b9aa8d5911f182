package bitfield

import (
	"fmt"

	"github.com/kf7lze/radioclone/memmap"
)

// readRaw reads the field's raw bit pattern at element offset off as an
// unsigned value. Used by the integer, enum and flags kinds.
func (f *Field) readRaw(mm *memmap.MemoryMap, off int) (uint64, error) {
	data, err := mm.ReadAt(off, f.ByteLen())
	if err != nil {
		return 0, &DecodeError{Field: f.Name, Reason: err.Error()}
	}

	if f.ByteLen() == 1 {
		return (uint64(data[0]) >> f.BitOffset) & maxUint(f.BitWidth), nil
	}

	var raw uint64
	if f.Endian == BigEndian {
		for _, b := range data {
			raw = raw<<8 | uint64(b)
		}
	} else {
		for i := len(data) - 1; i >= 0; i-- {
			raw = raw<<8 | uint64(data[i])
		}
	}
	return raw & maxUint(f.BitWidth), nil
}

// writeRaw writes the field's raw bit pattern at element offset off. For
// sub-byte fields the neighboring bits of the shared byte are preserved.
// raw must already be validated to fit in BitWidth bits.
func (f *Field) writeRaw(mm *memmap.MemoryMap, off int, raw uint64) error {
	if f.ByteLen() == 1 {
		cur, err := mm.Byte(off)
		if err != nil {
			return &EncodeError{Field: f.Name, Reason: err.Error()}
		}
		mask := byte(maxUint(f.BitWidth)) << f.BitOffset
		next := (cur &^ mask) | (byte(raw) << f.BitOffset)
		if err := mm.SetByte(off, next); err != nil {
			return &EncodeError{Field: f.Name, Reason: err.Error()}
		}
		return nil
	}

	n := f.ByteLen()
	data := make([]byte, n)
	if f.Endian == BigEndian {
		for i := n - 1; i >= 0; i-- {
			data[i] = byte(raw)
			raw >>= 8
		}
	} else {
		for i := 0; i < n; i++ {
			data[i] = byte(raw)
			raw >>= 8
		}
	}
	if err := mm.WriteAt(off, data); err != nil {
		return &EncodeError{Field: f.Name, Reason: err.Error()}
	}
	return nil
}

func (f *Field) decodeInt(mm *memmap.MemoryMap, off int) (interface{}, error) {
	raw, err := f.readRaw(mm, off)
	if err != nil {
		return nil, err
	}
	if f.Kind == KindInt {
		// Sign-extend from BitWidth
		if f.BitWidth < 64 && raw&(1<<(f.BitWidth-1)) != 0 {
			raw |= ^maxUint(f.BitWidth)
		}
		return int64(raw), nil
	}
	return int64(raw), nil
}

func (f *Field) encodeInt(mm *memmap.MemoryMap, off int, v interface{}) error {
	val, ok := toInt64(v)
	if !ok {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("integer required, got %T", v)}
	}

	var raw uint64
	if f.Kind == KindInt {
		min := int64(-1) << (f.BitWidth - 1)
		max := int64(maxUint(f.BitWidth - 1))
		if f.BitWidth == 64 {
			min, max = -1<<63, 1<<63-1
		}
		if val < min || val > max {
			return &EncodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("value %d outside range %d..%d", val, min, max),
			}
		}
		raw = uint64(val) & maxUint(f.BitWidth)
	} else {
		if val < 0 || uint64(val) > maxUint(f.BitWidth) {
			return &EncodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("value %d outside range 0..%d", val, maxUint(f.BitWidth)),
			}
		}
		raw = uint64(val)
	}
	return f.writeRaw(mm, off, raw)
}

func (f *Field) decodeBCD(mm *memmap.MemoryMap, off int) (interface{}, error) {
	data, err := mm.ReadAt(off, f.ByteLen())
	if err != nil {
		return nil, &DecodeError{Field: f.Name, Reason: err.Error()}
	}
	if f.Endian == LittleEndian {
		data = reverse(data)
	}

	// data is now most significant byte first; each byte holds two digits,
	// high nibble first.
	var val int64
	for i, b := range data {
		hi, lo := b>>4, b&0x0F
		skipHi := f.Digits%2 == 1 && i == 0
		if skipHi {
			if hi != 0 {
				return nil, &DecodeError{
					Field:  f.Name,
					Reason: fmt.Sprintf("unused high nibble 0x%X at byte %d is not zero", hi, i),
				}
			}
		} else {
			if hi > 9 {
				return nil, &DecodeError{
					Field:  f.Name,
					Reason: fmt.Sprintf("nibble 0x%X at byte %d is not a decimal digit", hi, i),
				}
			}
			val = val*10 + int64(hi)
		}
		if lo > 9 {
			return nil, &DecodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("nibble 0x%X at byte %d is not a decimal digit", lo, i),
			}
		}
		val = val*10 + int64(lo)
	}
	return val, nil
}

func (f *Field) encodeBCD(mm *memmap.MemoryMap, off int, v interface{}) error {
	val, ok := toInt64(v)
	if !ok {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("integer required, got %T", v)}
	}
	if val < 0 {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("value %d is negative", val)}
	}

	limit := int64(1)
	for i := 0; i < f.Digits; i++ {
		limit *= 10
	}
	if val >= limit {
		return &EncodeError{
			Field:  f.Name,
			Reason: fmt.Sprintf("value %d does not fit in %d BCD digits", val, f.Digits),
		}
	}

	// Fill digits least significant first, low nibble before high nibble.
	n := f.ByteLen()
	data := make([]byte, n)
	rest := val
	for i := n - 1; i >= 0; i-- {
		lo := byte(rest % 10)
		rest /= 10
		hi := byte(rest % 10)
		rest /= 10
		data[i] = hi<<4 | lo
	}

	if f.Endian == LittleEndian {
		data = reverse(data)
	}
	if err := mm.WriteAt(off, data); err != nil {
		return &EncodeError{Field: f.Name, Reason: err.Error()}
	}
	return nil
}

func (f *Field) decodeEnum(mm *memmap.MemoryMap, off int) (interface{}, error) {
	raw, err := f.readRaw(mm, off)
	if err != nil {
		return nil, err
	}
	for _, it := range f.Enum {
		if it.Code == raw {
			return it.Label, nil
		}
	}
	if f.Policy == EnumLenient {
		return UnknownValue, nil
	}
	return nil, &DecodeError{
		Field:  f.Name,
		Reason: fmt.Sprintf("code %d has no mapping", raw),
	}
}

func (f *Field) encodeEnum(mm *memmap.MemoryMap, off int, v interface{}) error {
	label, ok := v.(string)
	if !ok {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("string label required, got %T", v)}
	}
	if label == UnknownValue {
		return &EncodeError{Field: f.Name, Reason: "cannot encode the unknown sentinel"}
	}
	for _, it := range f.Enum {
		if it.Label == label {
			return f.writeRaw(mm, off, it.Code)
		}
	}
	return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("label %q has no mapping", label)}
}

func (f *Field) decodeFlags(mm *memmap.MemoryMap, off int) (interface{}, error) {
	raw, err := f.readRaw(mm, off)
	if err != nil {
		return nil, err
	}
	set := []string{}
	for i, name := range f.FlagNames {
		if raw&(1<<i) != 0 {
			set = append(set, name)
		}
	}
	return set, nil
}

func (f *Field) encodeFlags(mm *memmap.MemoryMap, off int, v interface{}) error {
	names, ok := v.([]string)
	if !ok {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("flag name list required, got %T", v)}
	}
	var raw uint64
	for _, name := range names {
		bit := -1
		for i, fn := range f.FlagNames {
			if fn == name {
				bit = i
				break
			}
		}
		if bit < 0 {
			return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("unknown flag %q", name)}
		}
		raw |= 1 << bit
	}
	return f.writeRaw(mm, off, raw)
}

func (f *Field) decodeString(mm *memmap.MemoryMap, off int) (interface{}, error) {
	data, err := mm.ReadAt(off, f.Length)
	if err != nil {
		return nil, &DecodeError{Field: f.Name, Reason: err.Error()}
	}

	end := len(data)
	if f.HasTerm {
		for i, b := range data {
			if b == f.Term {
				end = i
				break
			}
		}
	} else {
		for end > 0 && data[end-1] == f.Pad {
			end--
		}
	}

	text := data[:end]
	for i, b := range text {
		if b < 0x20 || b > 0x7E {
			return nil, &DecodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("non-printable byte 0x%02X at position %d", b, i),
			}
		}
	}
	return string(text), nil
}

func (f *Field) encodeString(mm *memmap.MemoryMap, off int, v interface{}) error {
	text, ok := v.(string)
	if !ok {
		return &EncodeError{Field: f.Name, Reason: fmt.Sprintf("string required, got %T", v)}
	}

	capacity := f.Length
	if f.HasTerm {
		capacity--
	}
	if len(text) > capacity {
		return &EncodeError{
			Field:  f.Name,
			Reason: fmt.Sprintf("text of %d bytes exceeds capacity %d", len(text), capacity),
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] < 0x20 || text[i] > 0x7E {
			return &EncodeError{
				Field:  f.Name,
				Reason: fmt.Sprintf("non-printable byte 0x%02X at position %d", text[i], i),
			}
		}
	}

	data := make([]byte, f.Length)
	copy(data, text)
	rest := data[len(text):]
	if f.HasTerm && len(rest) > 0 {
		rest[0] = f.Term
		rest = rest[1:]
	}
	for i := range rest {
		rest[i] = f.Pad
	}
	if err := mm.WriteAt(off, data); err != nil {
		return &EncodeError{Field: f.Name, Reason: err.Error()}
	}
	return nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func reverse(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out
}
