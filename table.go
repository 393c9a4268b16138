package genbitmap

// bitMasks maps a bit offset within a byte to its mask, most significant first.
var bitMasks = [8]byte{0x80, 0x40, 0x20, 0x10, 0x08, 0x04, 0x02, 0x01}

// transitions[prev][offset][v] is prev with the bit at offset forced to v.
// It replaces the set/clear branch on the Set path with a single lookup.
var transitions = buildTransitions()

func buildTransitions() (t [256][8][2]byte) {
	for prev := 0; prev < 256; prev++ {
		for offset, mask := range bitMasks {
			t[prev][offset][0] = byte(prev) &^ mask
			t[prev][offset][1] = byte(prev) | mask
		}
	}
	return t
}

func boolToIndex(v bool) int {
	if v {
		return 1
	}
	return 0
}
