package json

import (
	"io"
	"unicode/utf8"

	"github.com/tdewolff/jsonmin/filter"
	"github.com/tdewolff/jsonmin/stream"
)

// Reader is an io.Reader that returns the minified JSON of an underlying reader.
// Nothing is read from the underlying reader before the first call to Read.
type Reader struct {
	r    io.Reader
	size int
	d    filter.Decider[rune]

	f   *filter.Filter[rune]
	err error

	// encoded bytes of a rune that did not fit in the previous Read
	pending    [utf8.UTFMax]byte
	pendingPos int
	pendingLen int
}

// NewReader returns a Reader that minifies JSON from r using the default minifier.
func NewReader(r io.Reader) *Reader {
	return DefaultMinifier.NewReader(r)
}

// Read reads minified JSON into p. It returns io.EOF when all input has been minified,
// a *stream.DecodeError when the input is not valid UTF-8, or the error of the underlying reader.
// After an error the Reader cannot be used anymore.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.f == nil {
		size := r.size
		if size <= 0 {
			size = len(p)
		}
		r.f = filter.New[rune](stream.NewDecoder(stream.NewChunkReader(r.r, size)), r.d)
	}

	n := copy(p, r.pending[r.pendingPos:r.pendingLen])
	r.pendingPos += n
	for n < len(p) && r.err == nil {
		var c rune
		if c, r.err = r.f.Next(); r.err != nil {
			break
		}
		if utf8.RuneLen(c) <= len(p)-n {
			n += utf8.EncodeRune(p[n:], c)
		} else {
			r.pendingLen = utf8.EncodeRune(r.pending[:], c)
			r.pendingPos = copy(p[n:], r.pending[:r.pendingLen])
			n += r.pendingPos
		}
	}
	if 0 < n && r.err == io.EOF {
		return n, nil
	}
	return n, r.err
}

// Buffered returns the number of minified bytes that were decoded but not yet returned by Read.
func (r *Reader) Buffered() int {
	return r.pendingLen - r.pendingPos
}
