package engine

// byteClass partitions the byte alphabet into the five classes the DFA
// distinguishes. Everything that is not structural is classNormal,
// including bytes inside multi-byte UTF-8 sequences.
type byteClass uint8

const (
	classNormal byteClass = iota
	classDelimiter
	classQuote
	classLF
	classCR

	numClasses = 5
)

// classifier is a 256-entry lookup table built once per configuration.
// Classification is a single indexed load per byte.
type classifier struct {
	table [256]byteClass
}

func newClassifier(delimiter, quote byte) *classifier {
	c := &classifier{}
	c.table[delimiter] = classDelimiter
	c.table[quote] = classQuote
	c.table['\n'] = classLF
	c.table['\r'] = classCR
	return c
}

func (c *classifier) class(b byte) byteClass {
	return c.table[b]
}
