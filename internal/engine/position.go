package engine

// Position tracks where the controller is in the logical byte stream.
// Lines are 1-indexed, records 0-indexed. A CRLF pair advances Line once.
type Position struct {
	Byte   int64
	Line   int
	Record int
}

func (p *Position) reset() {
	p.Byte = 0
	p.Line = 1
	p.Record = 0
}
