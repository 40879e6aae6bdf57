package codec

// appendVarUInt appends v using 7 bit groups with the end flag on the last byte.
func appendVarUInt(dst []byte, v uint64) []byte {
	var buf [10]byte
	i := len(buf) - 1
	buf[i] = byte(v&0x7F) | 0x80
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v & 0x7F)
	}
	return append(dst, buf[i:]...)
}

// appendVarInt appends a signed magnitude variable length integer.
// The sign is carried separately so that negative zero can be written.
func appendVarInt(dst []byte, magnitude uint64, negative bool) []byte {
	var buf [11]byte
	i := len(buf) - 1
	buf[i] = byte(magnitude&0x7F) | 0x80
	for magnitude >>= 7; magnitude > 0; magnitude >>= 7 {
		i--
		buf[i] = byte(magnitude & 0x7F)
	}
	// the first byte reserves bit 6 for the sign
	if buf[i]&0x40 != 0 {
		i--
		buf[i] = 0
	}
	if negative {
		buf[i] |= 0x40
	}
	return append(dst, buf[i:]...)
}

// appendInt appends a fixed length signed magnitude integer.
// A positive zero is written as no bytes.
func appendInt(dst []byte, magnitude []byte, negative bool) []byte {
	if len(magnitude) == 0 {
		if negative {
			return append(dst, 0x80)
		}
		return dst
	}
	if magnitude[0]&0x80 != 0 {
		if negative {
			dst = append(dst, 0x80)
		} else {
			dst = append(dst, 0x00)
		}
		return append(dst, magnitude...)
	}
	start := len(dst)
	dst = append(dst, magnitude...)
	if negative {
		dst[start] |= 0x80
	}
	return dst
}

func signed(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}
