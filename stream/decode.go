package stream

import (
	"io"
	"unicode/utf8"
)

// Decoder decodes UTF-8 from a byte reader one rune at a time.
// Multi-byte sequences may be split over several chunks of the underlying reader.
type Decoder struct {
	r      io.ByteReader
	offset int64
	err    error
}

// NewDecoder returns a new Decoder reading from r.
func NewDecoder(r io.ByteReader) *Decoder {
	return &Decoder{r: r}
}

// ReadRune returns the next rune and the number of bytes it was encoded in.
// It returns io.EOF at the end of the stream and a *DecodeError for invalid UTF-8.
// Errors are sticky.
func (d *Decoder) ReadRune() (rune, int, error) {
	if d.err != nil {
		return 0, 0, d.err
	}

	b, err := d.r.ReadByte()
	if err != nil {
		d.err = err
		return 0, 0, err
	}
	n := width(b)
	if n == 1 {
		d.offset++
		return rune(b), 1, nil
	} else if n == 0 {
		return 0, 0, d.invalid(b)
	}

	var buf [utf8.UTFMax]byte
	buf[0] = b
	for i := 1; i < n; i++ {
		if buf[i], err = d.r.ReadByte(); err == io.EOF {
			return 0, 0, d.invalid(buf[:i]...)
		} else if err != nil {
			d.err = err
			return 0, 0, err
		}
	}
	c, size := utf8.DecodeRune(buf[:n])
	if c == utf8.RuneError && size != n {
		return 0, 0, d.invalid(buf[:n]...)
	}
	d.offset += int64(n)
	return c, n, nil
}

// Next returns the next rune, it makes Decoder a filter.Source[rune].
func (d *Decoder) Next() (rune, error) {
	c, _, err := d.ReadRune()
	return c, err
}

// Offset returns the number of bytes decoded successfully.
func (d *Decoder) Offset() int64 {
	return d.offset
}

func (d *Decoder) invalid(b ...byte) error {
	d.err = &DecodeError{
		Offset: d.offset,
		Bytes:  append([]byte{}, b...),
	}
	return d.err
}

// width returns the length of the UTF-8 sequence that starts with lead byte b, or zero if b cannot start a sequence (RFC 3629).
func width(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC2:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	case b < 0xF5:
		return 4
	}
	return 0
}
