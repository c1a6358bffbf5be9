package adts

// ReadBit returns the bit at offset, counted from the most significant bit
// (offset 0) to the least significant bit (offset 7).
func ReadBit(b byte, offset uint) uint8 {
	if offset > 7 {
		panic("adts: bit offset out of range")
	}
	return (b >> (7 - offset)) & 1
}

// ReadBits returns count consecutive bits starting at offset, counted from the
// least significant bit. offset+count must not exceed 8.
//
// Note the origin differs from ReadBit: ReadBits(b, 0, 2) are the two lowest
// bits of b while ReadBit(b, 0) is the highest.
func ReadBits(b byte, offset, count uint) uint8 {
	if count == 0 || offset+count > 8 {
		panic("adts: bit range out of range")
	}
	mask := byte(0xFF) >> (8 - count)
	return (b >> offset) & mask
}

// allOnes reports whether the count bits of b starting at MSB offset 0 are set.
func allOnes(b byte, count uint) bool {
	for i := uint(0); i < count; i++ {
		if ReadBit(b, i) != 1 {
			return false
		}
	}
	return true
}
