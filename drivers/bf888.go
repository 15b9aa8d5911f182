package drivers

import (
	"fmt"
	"time"

	"github.com/kf7lze/radioclone/bitfield"
	"github.com/kf7lze/radioclone/clone"
	"github.com/kf7lze/radioclone/memmap"
	"github.com/kf7lze/radioclone/settings"
)

// Baofeng BF-888 family (and its H-777/Arcshell/Greaval relabels): 16
// channels of 16 bytes each at 0x0010, two settings blocks at 0x02B0 and
// 0x03C0. Frequencies and tones are little-endian BCD; the per-channel
// option bits pack into one byte.

const (
	bf888MemSize   = 0x03E0
	bf888ChanBase  = 0x0010
	bf888ChanCount = 16
	bf888ChanSize  = 16
)

const bf888Ack = 0x06

var bf888TimeoutTimer = []bitfield.EnumItem{
	{Code: 0, Label: "Off"},
	{Code: 1, Label: "30 seconds"},
	{Code: 2, Label: "60 seconds"},
	{Code: 3, Label: "90 seconds"},
	{Code: 4, Label: "120 seconds"},
	{Code: 5, Label: "150 seconds"},
	{Code: 6, Label: "180 seconds"},
	{Code: 7, Label: "210 seconds"},
	{Code: 8, Label: "240 seconds"},
	{Code: 9, Label: "270 seconds"},
	{Code: 10, Label: "300 seconds"},
}

var bf888Fields = []*bitfield.Field{
	// Per-channel fields, 16 elements at the channel stride.
	chanBCD("rxfreq", 0, 8),
	chanBCD("txfreq", 4, 8),
	chanBCD("rxtone", 8, 4),
	chanBCD("txtone", 10, 4),
	chanBit("bcl", 12, 0),
	chanBit("beatshift", 12, 1),
	chanEnum("bandwidth", 12, 2, []bitfield.EnumItem{
		{Code: 0, Label: "Wide"},
		{Code: 1, Label: "Narrow"},
	}),
	chanEnum("power", 12, 3, []bitfield.EnumItem{
		{Code: 0, Label: "Low"},
		{Code: 1, Label: "High"},
	}),
	chanBit("skip", 12, 4),

	// First settings block.
	{Name: "voiceprompt", Offset: 0x02B0, BitWidth: 8},
	{Name: "voicelanguage", Offset: 0x02B1, BitWidth: 8, Kind: bitfield.KindEnum,
		Policy: bitfield.EnumLenient,
		Enum: []bitfield.EnumItem{
			{Code: 0, Label: "English"},
			{Code: 1, Label: "Chinese"},
		}},
	{Name: "scan", Offset: 0x02B2, BitOffset: 0, BitWidth: 1},
	{Name: "vox", Offset: 0x02B3, BitOffset: 0, BitWidth: 1},
	{Name: "voxlevel", Offset: 0x02B4, BitWidth: 8},
	{Name: "voxinhibitonrx", Offset: 0x02B5, BitOffset: 0, BitWidth: 1},
	{Name: "alarm", Offset: 0x02B8, BitOffset: 0, BitWidth: 1},
	{Name: "fmradio", Offset: 0x02B9, BitOffset: 0, BitWidth: 1},

	// Second settings block.
	{Name: "beep", Offset: 0x03C0, BitOffset: 0, BitWidth: 1},
	{Name: "batterysaver", Offset: 0x03C0, BitOffset: 1, BitWidth: 1},
	{Name: "squelchlevel", Offset: 0x03C1, BitWidth: 8},
	{Name: "sidekeyfunction", Offset: 0x03C2, BitWidth: 8, Kind: bitfield.KindEnum,
		Policy: bitfield.EnumLenient,
		Enum: []bitfield.EnumItem{
			{Code: 0, Label: "Off"},
			{Code: 1, Label: "Monitor"},
			{Code: 2, Label: "Transmit Power"},
			{Code: 3, Label: "Alarm"},
		}},
	{Name: "timeouttimer", Offset: 0x03C3, BitWidth: 8, Kind: bitfield.KindEnum,
		Policy: bitfield.EnumLenient, Enum: bf888TimeoutTimer},
	{Name: "scanmode", Offset: 0x03C7, BitOffset: 0, BitWidth: 1, Kind: bitfield.KindEnum,
		Enum: []bitfield.EnumItem{
			{Code: 0, Label: "Carrier"},
			{Code: 1, Label: "Time"},
		}},
}

func chanBCD(name string, off, digits int) *bitfield.Field {
	return &bitfield.Field{
		Name: name, Offset: bf888ChanBase + off, Kind: bitfield.KindBCD,
		Digits: digits, Endian: bitfield.LittleEndian,
		Count: bf888ChanCount, Stride: bf888ChanSize,
	}
}

func chanBit(name string, off, bit int) *bitfield.Field {
	return &bitfield.Field{
		Name: name, Offset: bf888ChanBase + off, BitOffset: bit, BitWidth: 1,
		Count: bf888ChanCount, Stride: bf888ChanSize,
	}
}

func chanEnum(name string, off, bit int, items []bitfield.EnumItem) *bitfield.Field {
	return &bitfield.Field{
		Name: name, Offset: bf888ChanBase + off, BitOffset: bit, BitWidth: 1,
		Kind: bitfield.KindEnum, Enum: items,
		Count: bf888ChanCount, Stride: bf888ChanSize,
	}
}

// bf888Protocol is the wire protocol: enter programming mode, confirm the
// ident prefix, then move 8-byte blocks with an ack swap and no checksum.
var bf888Protocol = clone.Protocol{
	Handshake: []clone.HandshakeStep{
		{Send: []byte{0x02}, Delay: 100 * time.Millisecond},
		{Send: []byte("PROGRAM"), Expect: []byte{bf888Ack}},
		// Some BF-888S units pause mid-ident; the per-byte timeout must
		// cover the stall before the last three ident bytes.
		{Send: []byte{0x02}, Expect: []byte("P3107"), ExpectLen: 8, Prefix: true},
		{Send: []byte{bf888Ack}, Expect: []byte{bf888Ack}},
	},
	Finish:       []clone.HandshakeStep{{Send: []byte{'E'}}},
	BlockSize:    0x08,
	TotalSize:    bf888MemSize,
	Addressing:   clone.AddrSequential,
	ReadCmd:      'R',
	WriteCmd:     'W',
	RespCmd:      'W',
	Ack:          bf888Ack,
	Checksum:     clone.ChecksumNone,
	ByteTimeout:  500 * time.Millisecond,
	BlockTimeout: 1500 * time.Millisecond,
	Retries:      3,
}

func bf888Tree(cfg *Config, mm *memmap.MemoryMap) *settings.Group {
	root := settings.NewGroup("root")

	perChannel := []string{
		"rxfreq", "txfreq", "rxtone", "txtone",
		"bcl", "beatshift", "bandwidth", "power", "skip",
	}
	channels := root.AddGroup(settings.NewGroup("channels"))
	for i := 0; i < bf888ChanCount; i++ {
		ch := channels.AddGroup(settings.NewGroup(fmt.Sprintf("%d", i+1)))
		for _, name := range perChannel {
			ch.AddSetting(settings.NewSettingAt(name, cfg.Field(name), mm, i))
		}
	}

	general := root.AddGroup(settings.NewGroup("settings"))
	for _, name := range []string{
		"voiceprompt", "voicelanguage", "scan", "vox", "voxlevel",
		"voxinhibitonrx", "alarm", "fmradio",
		"beep", "batterysaver", "squelchlevel", "sidekeyfunction",
		"timeouttimer", "scanmode",
	} {
		general.AddSetting(settings.NewSetting(name, cfg.Field(name), mm))
	}

	return root
}

func init() {
	register(&Config{
		Vendor:   "Baofeng",
		Model:    "BF-888",
		MemSize:  bf888MemSize,
		Fields:   bf888Fields,
		Protocol: bf888Protocol,
		// The radio accepts writes only inside these windows; everything
		// else is skipped on upload.
		UploadRanges: []clone.AddrRange{
			{Start: 0x0000, End: 0x0110},
			{Start: 0x02B0, End: 0x02C0},
			{Start: 0x0380, End: 0x03E0},
		},
		buildTree: bf888Tree,
	})
}
