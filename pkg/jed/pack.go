package jed

import "fmt"

// PackBits packs a run of '0'/'1' characters into bytes, eight characters per
// byte. Character i of each group of eight becomes bit i of the byte, so the
// first character is the least significant bit. A short trailing group leaves
// the missing high bits clear.
func PackBits(run string) ([]byte, error) {
	out := make([]byte, (len(run)+7)/8)
	for i := 0; i < len(run); i++ {
		switch run[i] {
		case '1':
			out[i/8] |= 1 << (i % 8)
		case '0':
		default:
			return nil, fmt.Errorf("invalid fuse character %q at position %d", run[i], i)
		}
	}
	return out, nil
}

// bitsLSB decodes a '0'/'1' string where character i is bit i.
func bitsLSB(s string, width int) (uint64, error) {
	if len(s) > width {
		return 0, fmt.Errorf("%d bits exceed %d-bit field", len(s), width)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			v |= 1 << i
		case '0':
		default:
			return 0, fmt.Errorf("invalid bit character %q at position %d", s[i], i)
		}
	}
	return v, nil
}

// bitsMSB decodes a '0'/'1' string where the first character is the most
// significant bit.
func bitsMSB(s string, width int) (uint64, error) {
	if len(s) > width {
		return 0, fmt.Errorf("%d bits exceed %d-bit field", len(s), width)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			v = v<<1 | 1
		case '0':
			v <<= 1
		default:
			return 0, fmt.Errorf("invalid bit character %q at position %d", s[i], i)
		}
	}
	return v, nil
}
