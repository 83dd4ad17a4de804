// Package stream reads bytes from an io.Reader in fixed-size chunks and decodes them into runes.
//
// Decoder.Offset is public API for callers that report the position reached in the input,
// it matches the Offset of a DecodeError once decoding has failed.
package stream

import (
	"io"
)

// maxEmptyReads is the number of consecutive (0, nil) reads after which io.ErrNoProgress is returned.
const maxEmptyReads = 100

// ChunkReader reads bytes one at a time from a fixed-capacity buffer that is refilled from an io.Reader.
// The buffer is refilled in place only when all of its bytes have been read.
type ChunkReader struct {
	r   io.Reader
	buf []byte
	pos int // read cursor, pos <= n
	n   int // bytes filled by the last refill, n <= len(buf)

	eof     bool
	err     error
	refills int
}

// NewChunkReader returns a new ChunkReader with a buffer of size bytes.
// A ChunkReader of size zero never reads from r.
func NewChunkReader(r io.Reader, size int) *ChunkReader {
	if size < 0 {
		size = 0
	}
	return &ChunkReader{
		r:   r,
		buf: make([]byte, size),
	}
}

// ReadByte returns the next byte. It returns io.EOF at the end of the underlying reader,
// or the error returned by the underlying reader after all bytes read before it have been returned.
func (c *ChunkReader) ReadByte() (byte, error) {
	for c.pos == c.n {
		if !c.More() {
			if c.err != nil {
				return 0, c.err
			}
			return 0, io.EOF
		}
		c.refill()
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// More returns true if a refill may still produce data.
func (c *ChunkReader) More() bool {
	return 0 < len(c.buf) && !c.eof && c.err == nil
}

// Buffered returns the unread bytes of the current chunk.
func (c *ChunkReader) Buffered() []byte {
	return c.buf[c.pos:c.n]
}

// Refills returns the number of reads issued to the underlying reader.
func (c *ChunkReader) Refills() int {
	return c.refills
}

func (c *ChunkReader) refill() {
	c.pos, c.n = 0, 0
	for i := 0; i < maxEmptyReads; i++ {
		n, err := c.r.Read(c.buf)
		c.refills++
		if n < 0 || len(c.buf) < n {
			c.err = errInvalidRead
			return
		}
		c.n = n
		if err == io.EOF {
			c.eof = true
		} else if err != nil {
			c.err = err
		}
		if 0 < n || err != nil {
			return
		}
	}
	c.err = io.ErrNoProgress
}
