package adts

// CountFrames counts the positions in data where an ADTS sync word matching
// info begins.
//
// The scan steps one byte at a time and never jumps by frame length, so
// padding or garbage between frames is tolerated. Only the MPEG version,
// layer and CRC bits are compared against info; frames with a different
// profile or sampling frequency are still counted.
func CountFrames(data []byte, info HeaderInfo) int {
	n := 0
	for i := 0; i+1 < len(data); i++ {
		if isFrameStart(data[i], data[i+1], info) {
			n++
		}
	}
	return n
}

// FrameOffsets returns every position CountFrames would count.
func FrameOffsets(data []byte, info HeaderInfo) []int {
	var offsets []int
	for i := 0; i+1 < len(data); i++ {
		if isFrameStart(data[i], data[i+1], info) {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func isFrameStart(b0, b1 byte, info HeaderInfo) bool {
	if !allOnes(b0, 8) || !allOnes(b1, 4) {
		return false
	}
	return syncTailMatches(b1, info)
}

// syncTailMatches checks the low nibble of the second sync byte: ID, layer
// and protection_absent.
func syncTailMatches(b byte, info HeaderInfo) bool {
	if ReadBit(b, 5) != 0 || ReadBit(b, 6) != 0 {
		return false
	}

	id := ReadBit(b, 4)
	versionMatches := (info.MPEGVersion == MPEG2 && id == 1) ||
		(info.MPEGVersion == MPEG4 && id == 0)

	crc := ReadBit(b, 7)
	crcMatches := (info.CRCPresent && crc == 0) || (!info.CRCPresent && crc == 1)

	return versionMatches && crcMatches
}
