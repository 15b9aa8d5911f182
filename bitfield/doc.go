// Package bitfield maps named, typed values onto raw bit ranges of a radio
// memory image.
//
// A Field is an immutable descriptor of how one value is encoded inside a
// memmap.MemoryMap: byte offset, bit offset/width for sub-byte fields,
// element count and stride for repeated fields, and a kind-specific
// transform between raw bits and domain values.
//
// # Field kinds
//
//   - KindUint / KindInt: fixed-width integers, big- or little-endian,
//     including sub-byte bitfields that share a byte with their neighbors
//   - KindBCD: binary-coded decimal digit strings (frequencies, tones)
//   - KindEnum: a fixed code-to-label table (step sizes, squelch modes)
//   - KindFlags: named single-bit flags packed into one field
//   - KindString: fixed-length ASCII with a pad byte or terminator
//
// # Semantics
//
// Decode and Encode are pure translations with no side effects beyond the
// byte writes of a successful Encode. Encode validates the candidate value
// against the field's domain, computes the complete new byte representation,
// and only then touches the map, so a rejected value never disturbs bits
// that share a byte with the field. For every value v in a field's valid
// domain, Decode(Encode(v)) == v.
//
// Descriptors are defined once per radio model and shared read-only across
// all memory maps of that model.
package bitfield
