package protocol

// MaxVarintLen is the largest number of bytes a varint can occupy.
// Ten 7-bit groups cover a full uint64.
const MaxVarintLen = 10

// EncodeUvarint writes v into buf using base-128 varint encoding (low
// 7 bits per byte, high bit set while more bytes follow) and returns
// the number of bytes written. buf must have room for MaxVarintLen
// bytes.
func EncodeUvarint(buf []byte, v uint64) int {
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	return n + 1
}

// DecodeUvarint reads a varint from buf and returns the value and the
// number of bytes consumed. A negative count reports a malformed
// input: -1 when buf ends mid-varint, -2 when the varint runs past
// MaxVarintLen bytes.
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint
	for n, b := range buf {
		if n >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, n + 1
		}
		shift += 7
	}
	return 0, -1
}

// EncodeSvarint writes v into buf as a ZigZag-folded varint and
// returns the number of bytes written. ZigZag interleaves signed
// values onto the unsigned line (0, -1, 1, -2, 2 → 0, 1, 2, 3, 4) so
// small negative numbers stay short.
func EncodeSvarint(buf []byte, v int64) int {
	return EncodeUvarint(buf, zigzag(v))
}

// DecodeSvarint reads a ZigZag-folded varint from buf. The returned
// byte count follows the DecodeUvarint convention.
func DecodeSvarint(buf []byte) (int64, int) {
	uv, n := DecodeUvarint(buf)
	if n < 0 {
		return 0, n
	}
	return unzigzag(uv), n
}

// UvarintLen returns the encoded size of v in bytes.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// SvarintLen returns the encoded size of v as a signed varint.
func SvarintLen(v int64) int {
	return UvarintLen(zigzag(v))
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(uv uint64) int64 {
	v := int64(uv >> 1)
	if uv&1 != 0 {
		v = ^v
	}
	return v
}
