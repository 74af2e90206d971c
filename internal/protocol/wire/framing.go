package wire

import "bytes"

// Buffer accumulates raw bytes from a connection and yields complete frames.
//
// Each connection owns exactly one Buffer. Append the bytes of every read,
// then drain with Next until it reports no further frame; a trailing partial
// frame stays buffered for the next read.
//
// No size limit is imposed: a peer that never sends the delimiter grows the
// buffer without bound. This is a documented property of the protocol, not
// something this layer papers over.
type Buffer struct {
	data []byte
}

// Append adds a chunk of received bytes to the buffer.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// Next pops the earliest complete frame, without its delimiter. It returns
// false when no complete frame is buffered. One received chunk may carry
// several frames back-to-back; callers loop until Next returns false.
func (b *Buffer) Next() ([]byte, bool) {
	i := bytes.IndexByte(b.data, '\n')
	if i < 0 {
		return nil, false
	}

	frame := make([]byte, i)
	copy(frame, b.data[:i])
	b.data = b.data[i+1:]

	return frame, true
}

// Pending reports how many bytes of incomplete frame are currently buffered.
func (b *Buffer) Pending() int {
	return len(b.data)
}
