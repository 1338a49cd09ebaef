package engine

import (
	"encoding/binary"
	"math/bits"
)

// SWAR (SIMD within a register) helpers. The scanner examines input in
// 16-byte windows built from two 64-bit lanes; each lane is compared
// against broadcast patterns using the classic null-byte trick:
//
//	m := x ^ pattern           // zero byte where x matches pattern
//	(m - 0x0101..) & ^m & 0x8080..
//
// which leaves bit 8i+7 set exactly when byte i of x equals the pattern.
const (
	swarLoMask = 0x0101010101010101
	swarHiMask = 0x8080808080808080
)

func broadcast(b byte) uint64 {
	return uint64(b) * swarLoMask
}

// matchMask reports which bytes of word equal the broadcast pattern.
// Bit 8i+7 of the result corresponds to byte i.
func matchMask(word, pattern uint64) uint64 {
	m := word ^ pattern
	return (m - swarLoMask) & ^m & swarHiMask
}

// maskByteIndex converts a set bit of a matchMask result into the index of
// the matching byte within the lane.
func maskByteIndex(t int) int {
	return t >> 3
}

// indexStructural returns the index of the first delimiter, quote, LF or
// CR byte in data, or -1. It is the bulk-skip primitive for the DFA
// parser: runs of plain bytes are located a word at a time and copied in
// one append.
func indexStructural(data []byte, delimiter, quote byte) int {
	dPat := broadcast(delimiter)
	qPat := broadcast(quote)
	lfPat := broadcast('\n')
	crPat := broadcast('\r')

	i := 0
	for ; i+8 <= len(data); i += 8 {
		w := binary.LittleEndian.Uint64(data[i:])
		m := matchMask(w, dPat) | matchMask(w, qPat) | matchMask(w, lfPat) | matchMask(w, crPat)
		if m != 0 {
			return i + maskByteIndex(bits.TrailingZeros64(m))
		}
	}
	for ; i < len(data); i++ {
		switch data[i] {
		case delimiter, quote, '\n', '\r':
			return i
		}
	}
	return -1
}
