package engine

// Separator records are packed into uint32 values so a chunk scan produces
// a flat, cache-friendly slice instead of a slice of structs.
//
// Basic layout:
//
//	bits 0-30  byte offset
//	bit  31    separator type (0 = delimiter, 1 = record terminator)
//
// Extended layout trades one offset bit for field metadata:
//
//	bits 0-29  byte offset
//	bit  30    field was quoted
//	bit  31    separator type
const (
	sepDelimiter uint32 = 0
	sepLF        uint32 = 1

	maxOffsetBasic    = 0x7FFF_FFFF
	maxOffsetExtended = 0x3FFF_FFFF

	quotedFlag = uint32(1) << 30
	typeFlag   = uint32(1) << 31
)

func packSeparator(offset, sepType uint32) uint32 {
	return offset | sepType<<31
}

func packSeparatorExtended(offset uint32, quoted bool, sepType uint32) uint32 {
	p := offset | sepType<<31
	if quoted {
		p |= quotedFlag
	}
	return p
}

func sepOffset(p uint32) uint32 {
	return p & maxOffsetBasic
}

func sepOffsetExtended(p uint32) uint32 {
	return p & maxOffsetExtended
}

func sepType(p uint32) uint32 {
	return p >> 31
}

func sepQuoted(p uint32) bool {
	return p&quotedFlag != 0
}
