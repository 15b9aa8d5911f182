package clone

// ChecksumKind selects the per-block checksum algorithm a radio's protocol
// uses. The kind determines both the algorithm and the number of checksum
// bytes framed after each block payload.
type ChecksumKind int

const (
	// ChecksumNone frames no checksum bytes; block integrity rides on the
	// protocol's acknowledgment exchange alone.
	ChecksumNone ChecksumKind = iota

	// ChecksumAdditive is a one-byte truncated sum of the payload.
	ChecksumAdditive

	// ChecksumXOR is a one-byte XOR of the payload.
	ChecksumXOR

	// ChecksumCRC16 is CRC-16-CCITT (poly 0x1021, init 0xFFFF, no final
	// XOR), framed big-endian in two bytes.
	ChecksumCRC16
)

const (
	crc16Polynomial = 0x1021
	crc16Initial    = 0xFFFF
	crc16HighBit    = 0x8000
)

// Size returns the number of checksum bytes the kind frames per block.
func (k ChecksumKind) Size() int {
	switch k {
	case ChecksumAdditive, ChecksumXOR:
		return 1
	case ChecksumCRC16:
		return 2
	default:
		return 0
	}
}

// Sum computes the checksum bytes for a block payload.
func (k ChecksumKind) Sum(data []byte) []byte {
	switch k {
	case ChecksumAdditive:
		var sum byte
		for _, b := range data {
			sum += b
		}
		return []byte{sum}
	case ChecksumXOR:
		var x byte
		for _, b := range data {
			x ^= b
		}
		return []byte{x}
	case ChecksumCRC16:
		crc := calculateCRC16(data)
		return []byte{byte(crc >> 8), byte(crc)}
	default:
		return nil
	}
}

// Verify checks the framed checksum bytes against the payload.
func (k ChecksumKind) Verify(data, sum []byte) bool {
	want := k.Sum(data)
	if len(sum) != len(want) {
		return false
	}
	for i := range want {
		if sum[i] != want[i] {
			return false
		}
	}
	return true
}

func (k ChecksumKind) String() string {
	switch k {
	case ChecksumNone:
		return "none"
	case ChecksumAdditive:
		return "additive"
	case ChecksumXOR:
		return "xor"
	case ChecksumCRC16:
		return "crc16"
	default:
		return "invalid"
	}
}

// calculateCRC16 computes CRC-16-CCITT over data.
func calculateCRC16(data []byte) uint16 {
	crc := uint16(crc16Initial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&crc16HighBit != 0 {
				crc = (crc << 1) ^ crc16Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
