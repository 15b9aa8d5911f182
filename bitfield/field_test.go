package bitfield

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/kf7lze/radioclone/memmap"
)

func TestUintDecode(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		image []byte
		want  int64
	}{
		{
			name:  "single byte",
			field: Field{Name: "f", Offset: 1, BitWidth: 8},
			image: []byte{0x00, 0xA5, 0x00},
			want:  0xA5,
		},
		{
			name:  "u16 big endian",
			field: Field{Name: "f", Offset: 0, BitWidth: 16, Endian: BigEndian},
			image: []byte{0x12, 0x34},
			want:  0x1234,
		},
		{
			name:  "u16 little endian",
			field: Field{Name: "f", Offset: 0, BitWidth: 16, Endian: LittleEndian},
			image: []byte{0x12, 0x34},
			want:  0x3412,
		},
		{
			name:  "u32 big endian",
			field: Field{Name: "f", Offset: 0, BitWidth: 32, Endian: BigEndian},
			image: []byte{0x01, 0x02, 0x03, 0x04},
			want:  0x01020304,
		},
		{
			name:  "low nibble",
			field: Field{Name: "f", Offset: 0, BitOffset: 0, BitWidth: 4},
			image: []byte{0xC7},
			want:  0x7,
		},
		{
			name:  "high nibble",
			field: Field{Name: "f", Offset: 0, BitOffset: 4, BitWidth: 4},
			image: []byte{0xC7},
			want:  0xC,
		},
		{
			name:  "single bit",
			field: Field{Name: "f", Offset: 0, BitOffset: 3, BitWidth: 1},
			image: []byte{0x08},
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mm := memmap.NewFromBytes(tt.image)
			got, err := tt.field.Decode(mm)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got.(int64) != tt.want {
				t.Errorf("Decode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIntSignExtension(t *testing.T) {
	f := Field{Name: "offset", Offset: 0, BitWidth: 8, Kind: KindInt}
	mm := memmap.NewFromBytes([]byte{0xFF})

	got, err := f.Decode(mm)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.(int64) != -1 {
		t.Errorf("Decode = %d, want -1", got)
	}

	if err := f.Encode(mm, -128); err != nil {
		t.Fatalf("Encode(-128) failed: %v", err)
	}
	if err := f.Encode(mm, 128); err == nil {
		t.Error("Encode(128) should fail for signed 8-bit field")
	}
}

func TestRoundTripLaw(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		size   int
		values []interface{}
	}{
		{
			name:   "u8",
			field:  Field{Name: "f", BitWidth: 8},
			size:   1,
			values: []interface{}{int64(0), int64(1), int64(127), int64(255)},
		},
		{
			name:   "u16le",
			field:  Field{Name: "f", BitWidth: 16, Endian: LittleEndian},
			size:   2,
			values: []interface{}{int64(0), int64(0x1234), int64(0xFFFF)},
		},
		{
			name:   "i16be",
			field:  Field{Name: "f", BitWidth: 16, Endian: BigEndian, Kind: KindInt},
			size:   2,
			values: []interface{}{int64(-32768), int64(-1), int64(0), int64(32767)},
		},
		{
			name:   "nibble",
			field:  Field{Name: "f", BitOffset: 4, BitWidth: 4},
			size:   1,
			values: []interface{}{int64(0), int64(9), int64(15)},
		},
		{
			name:   "bcd 4 digits big endian",
			field:  Field{Name: "f", Kind: KindBCD, Digits: 4, Endian: BigEndian},
			size:   2,
			values: []interface{}{int64(0), int64(1462), int64(9999)},
		},
		{
			name:   "bcd 8 digits little endian",
			field:  Field{Name: "f", Kind: KindBCD, Digits: 8, Endian: LittleEndian},
			size:   4,
			values: []interface{}{int64(0), int64(14625000), int64(99999999)},
		},
		{
			name: "enum",
			field: Field{Name: "f", BitWidth: 8, Kind: KindEnum,
				Enum: []EnumItem{{0, "Off"}, {1, "30s"}, {2, "60s"}}},
			size:   1,
			values: []interface{}{"Off", "30s", "60s"},
		},
		{
			name: "flags",
			field: Field{Name: "f", BitWidth: 3, Kind: KindFlags,
				FlagNames: []string{"bcl", "scramble", "compander"}},
			size: 1,
			values: []interface{}{
				[]string{},
				[]string{"bcl"},
				[]string{"bcl", "compander"},
				[]string{"bcl", "scramble", "compander"},
			},
		},
		{
			name:   "string padded",
			field:  Field{Name: "f", Kind: KindString, Length: 6, Pad: 0x20},
			size:   6,
			values: []interface{}{"", "A", "KF7LZE"},
		},
		{
			name:   "string terminated",
			field:  Field{Name: "f", Kind: KindString, Length: 8, Pad: 0xFF, Term: 0x00, HasTerm: true},
			size:   8,
			values: []interface{}{"", "CALL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.field.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			for _, v := range tt.values {
				mm := memmap.New(tt.size)
				if err := tt.field.Encode(mm, v); err != nil {
					t.Fatalf("Encode(%v) failed: %v", v, err)
				}
				got, err := tt.field.Decode(mm)
				if err != nil {
					t.Fatalf("Decode after Encode(%v) failed: %v", v, err)
				}
				if !reflect.DeepEqual(got, v) {
					t.Errorf("round trip: Encode(%v) then Decode = %v", v, got)
				}
			}
		})
	}
}

func TestBCDScenario(t *testing.T) {
	// 2-byte, 4-digit BCD frequency field
	f := Field{Name: "rxfreq", Kind: KindBCD, Digits: 4, Endian: BigEndian}
	mm := memmap.New(2)

	if err := f.Encode(mm, 1462); err != nil {
		t.Fatalf("Encode(1462) failed: %v", err)
	}

	data, _ := mm.ReadAt(0, 2)
	if !bytes.Equal(data, []byte{0x14, 0x62}) {
		t.Errorf("encoded bytes = %X, want 1462", data)
	}

	got, err := f.Decode(mm)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.(int64) != 1462 {
		t.Errorf("Decode = %d, want 1462", got)
	}

	// A fifth digit cannot fit
	err = f.Encode(mm, 10000)
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Errorf("Encode(10000) = %v, want *EncodeError", err)
	}
}

func TestBCDDecodeRejectsNonDecimalNibble(t *testing.T) {
	f := Field{Name: "freq", Kind: KindBCD, Digits: 4, Endian: BigEndian}
	mm := memmap.NewFromBytes([]byte{0x1A, 0x62})

	_, err := f.Decode(mm)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Decode = %v, want *DecodeError", err)
	}
}

func TestSubByteIsolation(t *testing.T) {
	// Fields A and B share byte 0: A in bits 0-3, B in bits 4-7.
	a := Field{Name: "a", BitOffset: 0, BitWidth: 4}
	b := Field{Name: "b", BitOffset: 4, BitWidth: 4}
	mm := memmap.New(1)

	if err := b.Encode(mm, 0xB); err != nil {
		t.Fatalf("Encode b failed: %v", err)
	}
	if err := a.Encode(mm, 0x5); err != nil {
		t.Fatalf("Encode a failed: %v", err)
	}

	got, err := b.Decode(mm)
	if err != nil {
		t.Fatalf("Decode b failed: %v", err)
	}
	if got.(int64) != 0xB {
		t.Errorf("writing a clobbered b: got 0x%X, want 0xB", got)
	}

	raw, _ := mm.Byte(0)
	if raw != 0xB5 {
		t.Errorf("byte 0 = 0x%02X, want 0xB5", raw)
	}
}

func TestEnumPolicies(t *testing.T) {
	table := []EnumItem{{0, "Carrier"}, {1, "Time"}}
	mm := memmap.NewFromBytes([]byte{0x07}) // unmapped code

	strict := Field{Name: "scanmode", BitWidth: 8, Kind: KindEnum, Enum: table, Policy: EnumStrict}
	_, err := strict.Decode(mm)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Errorf("strict decode of unmapped code = %v, want *DecodeError", err)
	}

	lenient := Field{Name: "scanmode", BitWidth: 8, Kind: KindEnum, Enum: table, Policy: EnumLenient}
	got, err := lenient.Decode(mm)
	if err != nil {
		t.Fatalf("lenient decode failed: %v", err)
	}
	if got.(string) != UnknownValue {
		t.Errorf("lenient decode = %q, want %q", got, UnknownValue)
	}

	// The sentinel itself never encodes
	if err := lenient.Encode(mm, UnknownValue); err == nil {
		t.Error("encoding the unknown sentinel should fail")
	}
}

func TestRepeatedFieldIndexing(t *testing.T) {
	// 4 channels, one u8 per channel at stride 16
	f := Field{Name: "power", Offset: 8, BitWidth: 8, Count: 4, Stride: 16}
	mm := memmap.New(64)

	for i := 0; i < 4; i++ {
		if err := f.EncodeAt(mm, i, 10+i); err != nil {
			t.Fatalf("EncodeAt(%d) failed: %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		got, err := f.DecodeAt(mm, i)
		if err != nil {
			t.Fatalf("DecodeAt(%d) failed: %v", i, err)
		}
		if got.(int64) != int64(10+i) {
			t.Errorf("DecodeAt(%d) = %d, want %d", i, got, 10+i)
		}
		b, _ := mm.Byte(8 + i*16)
		if b != byte(10+i) {
			t.Errorf("byte at stride %d = %d, want %d", i, b, 10+i)
		}
	}

	if _, err := f.DecodeAt(mm, 4); err == nil {
		t.Error("DecodeAt(4) should fail for Count=4")
	}
	if _, err := f.DecodeAt(mm, -1); err == nil {
		t.Error("DecodeAt(-1) should fail")
	}
	if err := f.EncodeAt(mm, 4, 1); err == nil {
		t.Error("EncodeAt(4) should fail for Count=4")
	}
}

func TestStringFields(t *testing.T) {
	t.Run("decode strips trailing pad", func(t *testing.T) {
		f := Field{Name: "name", Kind: KindString, Length: 6, Pad: 0xFF}
		mm := memmap.NewFromBytes([]byte{'V', 'H', 'F', 0xFF, 0xFF, 0xFF})
		got, err := f.Decode(mm)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got.(string) != "VHF" {
			t.Errorf("Decode = %q, want \"VHF\"", got)
		}
	})

	t.Run("decode stops at terminator", func(t *testing.T) {
		f := Field{Name: "name", Kind: KindString, Length: 6, Pad: 0xFF, Term: 0, HasTerm: true}
		mm := memmap.NewFromBytes([]byte{'U', 'H', 'F', 0, 'x', 'x'})
		got, err := f.Decode(mm)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got.(string) != "UHF" {
			t.Errorf("Decode = %q, want \"UHF\"", got)
		}
	})

	t.Run("decode rejects non-printable bytes", func(t *testing.T) {
		f := Field{Name: "name", Kind: KindString, Length: 4, Pad: 0x20}
		mm := memmap.NewFromBytes([]byte{'A', 0x01, 'B', ' '})
		_, err := f.Decode(mm)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode = %v, want *DecodeError", err)
		}
	})

	t.Run("encode rejects oversize text", func(t *testing.T) {
		f := Field{Name: "name", Kind: KindString, Length: 4, Pad: 0x20}
		mm := memmap.New(4)
		if err := f.Encode(mm, "TOOLONG"); err == nil {
			t.Error("Encode of oversize text should fail")
		}
	})

	t.Run("terminated field reserves a terminator byte", func(t *testing.T) {
		f := Field{Name: "name", Kind: KindString, Length: 4, Pad: 0xFF, Term: 0, HasTerm: true}
		mm := memmap.New(4)
		if err := f.Encode(mm, "FOUR"); err == nil {
			t.Error("text filling the whole range leaves no room for the terminator")
		}
		if err := f.Encode(mm, "TRI"); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		data, _ := mm.ReadAt(0, 4)
		if !bytes.Equal(data, []byte{'T', 'R', 'I', 0}) {
			t.Errorf("encoded bytes = %X", data)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantErr bool
	}{
		{"valid u8", Field{Name: "f", BitWidth: 8}, false},
		{"no name", Field{BitWidth: 8}, true},
		{"zero width", Field{Name: "f"}, true},
		{"width over 64", Field{Name: "f", BitWidth: 65}, true},
		{"sub-byte spans bytes", Field{Name: "f", BitOffset: 6, BitWidth: 4}, true},
		{"ragged multi-byte", Field{Name: "f", BitWidth: 12}, true},
		{"stride too small", Field{Name: "f", BitWidth: 16, Count: 4, Stride: 1}, true},
		{"empty enum", Field{Name: "f", BitWidth: 8, Kind: KindEnum}, true},
		{"enum code too wide", Field{Name: "f", BitWidth: 2, Kind: KindEnum,
			Enum: []EnumItem{{9, "x"}}}, true},
		{"duplicate enum label", Field{Name: "f", BitWidth: 8, Kind: KindEnum,
			Enum: []EnumItem{{0, "x"}, {1, "x"}}}, true},
		{"flag name count mismatch", Field{Name: "f", BitWidth: 3, Kind: KindFlags,
			FlagNames: []string{"a", "b"}}, true},
		{"bcd no digits", Field{Name: "f", Kind: KindBCD}, true},
		{"string no length", Field{Name: "f", Kind: KindString}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
