package client

// pendingSend is an encoded frame the transport has only partly accepted.
type pendingSend struct {
	buf    []byte
	offset int
}

func newPendingSend(buf []byte, sent int) *pendingSend {
	return &pendingSend{buf: buf, offset: sent}
}

func (p *pendingSend) unsent() []byte {
	return p.buf[p.offset:]
}

func (p *pendingSend) remaining() int {
	return len(p.buf) - p.offset
}

// advance records n more bytes written. It never moves past the end.
func (p *pendingSend) advance(n int) {
	p.offset = min(p.offset+n, len(p.buf))
}

func (p *pendingSend) complete() bool {
	return p.offset >= len(p.buf)
}
