package drivers

import (
	"bytes"
	"testing"

	"github.com/kf7lze/radioclone/memmap"
	"github.com/kf7lze/radioclone/settings"
)

// bf888Image builds a synthetic BF-888 image with channel 1 programmed to
// 446.00625 MHz simplex, CTCSS 67.0, high power.
func bf888Image() *memmap.MemoryMap {
	mm := memmap.New(bf888MemSize)
	mm.Fill(0xFF)

	ch0 := bf888ChanBase
	// 44600625 as little-endian BCD
	mm.WriteAt(ch0, []byte{0x25, 0x06, 0x60, 0x44})   // rxfreq
	mm.WriteAt(ch0+4, []byte{0x25, 0x06, 0x60, 0x44}) // txfreq
	mm.WriteAt(ch0+8, []byte{0x70, 0x06})             // rxtone 670
	mm.WriteAt(ch0+10, []byte{0x70, 0x06})            // txtone 670
	mm.SetByte(ch0+12, 0x08)                          // high power, everything else clear

	// Settings blocks default to zero
	mm.WriteAt(0x02B0, make([]byte, 0x10))
	mm.WriteAt(0x03C0, make([]byte, 0x08))
	mm.SetByte(0x03C1, 0x05) // squelch level 5
	mm.SetByte(0x03C3, 0x04) // TOT 120 seconds
	return mm
}

func TestBF888DecodesSyntheticImage(t *testing.T) {
	cfg, err := Lookup("Baofeng", "BF-888")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	tree, err := cfg.BuildTree(bf888Image())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	tests := []struct {
		path string
		want interface{}
	}{
		{"channels/1/rxfreq", int64(44600625)},
		{"channels/1/txfreq", int64(44600625)},
		{"channels/1/rxtone", int64(670)},
		{"channels/1/power", "High"},
		{"channels/1/bandwidth", "Wide"},
		{"channels/1/bcl", int64(0)},
		{"settings/squelchlevel", int64(5)},
		{"settings/timeouttimer", "120 seconds"},
		{"settings/scanmode", "Carrier"},
	}

	for _, tt := range tests {
		got, err := tree.Get(tt.path)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBF888EncodeWritesExpectedBytes(t *testing.T) {
	cfg, _ := Lookup("Baofeng", "BF-888")
	mm := bf888Image()
	tree, err := cfg.BuildTree(mm)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	// Program channel 2 from scratch through the tree
	if err := tree.Set("channels/2/rxfreq", 46256250); err != nil {
		t.Fatalf("Set rxfreq failed: %v", err)
	}
	if err := tree.Set("channels/2/power", "Low"); err != nil {
		t.Fatalf("Set power failed: %v", err)
	}
	if err := tree.Set("channels/2/bandwidth", "Narrow"); err != nil {
		t.Fatalf("Set bandwidth failed: %v", err)
	}

	ch1 := bf888ChanBase + bf888ChanSize
	freq, _ := mm.ReadAt(ch1, 4)
	if !bytes.Equal(freq, []byte{0x50, 0x62, 0x25, 0x46}) {
		t.Errorf("channel 2 rxfreq bytes = %X, want 50 62 25 46", freq)
	}

	flags, _ := mm.Byte(ch1 + 12)
	if flags&0x08 != 0 {
		t.Errorf("power bit still set in flags 0x%02X", flags)
	}
	if flags&0x04 == 0 {
		t.Errorf("narrow bit not set in flags 0x%02X", flags)
	}
}

func TestBF888ChannelTreeShape(t *testing.T) {
	cfg, _ := Lookup("Baofeng", "BF-888")
	tree, err := cfg.BuildTree(bf888Image())
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	chans, err := tree.Children("channels")
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(chans) != 16 || chans[0] != "1" || chans[15] != "16" {
		t.Errorf("channel names = %v", chans)
	}

	count := 0
	tree.Walk(func(path string, s *settings.Setting) error {
		count++
		return nil
	})
	// 16 channels x 9 fields, plus the 14 general settings
	if want := 16*9 + 14; count != want {
		t.Errorf("tree has %d settings, want %d", count, want)
	}
}
