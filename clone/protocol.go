package clone

import (
	"fmt"
	"time"
)

// Addressing selects how block addresses drive a transfer.
type Addressing int

const (
	// AddrSequential transfers the whole image in ascending address
	// order, one BlockSize block at a time.
	AddrSequential Addressing = iota

	// AddrExplicit transfers only the protocol's Ranges, each block
	// carrying its own address. Ranges are issued one block at a time in
	// the order given.
	AddrExplicit
)

// AddrRange is a half-open address window [Start, End) transferred by an
// AddrExplicit protocol. Many radios accept writes only inside a few
// windows of their memory.
type AddrRange struct {
	Start int
	End   int
}

// HandshakeStep is one exchange of an identification or closing sequence:
// optionally send some bytes, optionally wait, then optionally read and
// match a reply.
type HandshakeStep struct {
	// Send is written to the transport first, if non-empty.
	Send []byte

	// Delay is observed between the write and the read. Some radios need
	// settle time before answering.
	Delay time.Duration

	// Expect is matched against the radio's reply. Empty means the step
	// expects no reply.
	Expect []byte

	// ExpectLen overrides the number of reply bytes to read; zero means
	// len(Expect). With Prefix set, only the first len(Expect) bytes of
	// the reply must match, letting drivers match an ident string while
	// ignoring a trailing version suffix.
	ExpectLen int
	Prefix    bool
}

func (s HandshakeStep) replyLen() int {
	if s.ExpectLen > 0 {
		return s.ExpectLen
	}
	return len(s.Expect)
}

// Protocol is the immutable, driver-supplied description of one radio
// model's clone protocol. One engine runs any protocol; nothing here is
// engine state.
//
// Block frames follow the common request/response shape of clone-mode
// radios:
//
//	read request:   [ReadCmd][ADDR_H][ADDR_L][LEN]
//	read response:  [RespCmd][ADDR_H][ADDR_L][LEN][DATA...][CHECKSUM]
//	write request:  [WriteCmd][ADDR_H][ADDR_L][LEN][DATA...][CHECKSUM]
//	write response: [Ack] (or anything else, treated as NAK)
//
// Every timing and retry parameter is explicit configuration. Per-radio
// values are correctness-critical facts sourced from the hardware, not
// defaults for the engine to invent.
type Protocol struct {
	// Handshake is the identification exchange run before any block
	// moves. A mismatch is fatal: the radio is assumed to be the wrong
	// model.
	Handshake []HandshakeStep

	// Finish is the closing exchange (end-of-transfer marker). Failure
	// here does not invalidate already-transferred data.
	Finish []HandshakeStep

	// BlockSize is the payload size of one transfer unit. The final block
	// of an image or range may be shorter.
	BlockSize int

	// TotalSize is the radio's full image length in bytes, and the
	// denominator of every progress report.
	TotalSize int

	Addressing Addressing

	// Ranges lists the address windows of an AddrExplicit protocol.
	// Ignored for AddrSequential.
	Ranges []AddrRange

	// ReadCmd, WriteCmd and RespCmd are the framing command bytes.
	ReadCmd  byte
	WriteCmd byte
	RespCmd  byte

	// Ack is the acknowledgment byte. After each downloaded block the
	// host sends Ack and expects Ack back; after each uploaded block the
	// radio answers Ack. Zero disables the exchange.
	Ack byte

	Checksum ChecksumKind

	// ByteTimeout bounds each transport read; BlockTimeout bounds the
	// whole block exchange. Expiry counts against the block's retry
	// budget, it is not an immediate abort.
	ByteTimeout  time.Duration
	BlockTimeout time.Duration

	// Retries is the number of additional attempts per block after the
	// first failure.
	Retries int
}

// Validate checks the protocol description for configuration errors.
// Engines validate once at construction.
func (p *Protocol) Validate() error {
	if p.BlockSize <= 0 {
		return fmt.Errorf("clone: block size %d must be positive", p.BlockSize)
	}
	if p.BlockSize > 0xFF {
		return fmt.Errorf("clone: block size %d does not fit the one-byte length field", p.BlockSize)
	}
	if p.TotalSize <= 0 {
		return fmt.Errorf("clone: total size %d must be positive", p.TotalSize)
	}
	if p.TotalSize > 0x10000 {
		return fmt.Errorf("clone: total size %d does not fit 16-bit block addressing", p.TotalSize)
	}
	if p.Retries < 0 {
		return fmt.Errorf("clone: negative retry count %d", p.Retries)
	}
	if p.ByteTimeout <= 0 || p.BlockTimeout <= 0 {
		return fmt.Errorf("clone: timeouts must be explicit and positive (byte=%v block=%v)",
			p.ByteTimeout, p.BlockTimeout)
	}
	if p.Addressing == AddrExplicit && len(p.Ranges) == 0 {
		return fmt.Errorf("clone: explicit addressing needs at least one range")
	}
	for _, r := range p.Ranges {
		if r.Start < 0 || r.End <= r.Start || r.End > p.TotalSize {
			return fmt.Errorf("clone: range [0x%04X, 0x%04X) outside image of %d bytes",
				r.Start, r.End, p.TotalSize)
		}
	}
	return nil
}

// block is one scheduled transfer unit.
type block struct {
	addr int
	size int
}

// blocks expands the protocol into its transfer schedule: ascending
// addresses over the whole image for sequential protocols, the configured
// windows for explicit ones.
func (p *Protocol) blocks() []block {
	ranges := p.Ranges
	if p.Addressing == AddrSequential {
		ranges = []AddrRange{{0, p.TotalSize}}
	}

	var out []block
	for _, r := range ranges {
		for addr := r.Start; addr < r.End; addr += p.BlockSize {
			size := p.BlockSize
			if addr+size > r.End {
				size = r.End - addr
			}
			out = append(out, block{addr: addr, size: size})
		}
	}
	return out
}

// payloadTotal returns the number of bytes the schedule will move. For
// sequential protocols this equals TotalSize.
func (p *Protocol) payloadTotal() int {
	total := 0
	for _, b := range p.blocks() {
		total += b.size
	}
	return total
}
