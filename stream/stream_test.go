package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

// readerMockup returns at most n bytes per read, followed by err once the data is exhausted.
type readerMockup struct {
	data []byte
	n    int
	err  error
}

func (r *readerMockup) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := r.n
	if len(p) < n {
		n = len(p)
	}
	n = copy(p[:n], r.data)
	r.data = r.data[n:]
	return n, nil
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) {
	return 0, nil
}

func readAll(c *ChunkReader) ([]byte, error) {
	b := []byte{}
	for {
		x, err := c.ReadByte()
		if err != nil {
			return b, err
		}
		b = append(b, x)
	}
}

////////////////////////////////////////////////////////////////

func TestChunkReader(t *testing.T) {
	input := "chunked source of bytes"
	for _, size := range []int{1, 2, 7, len(input), 1024} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			c := NewChunkReader(strings.NewReader(input), size)
			b, err := readAll(c)
			test.T(t, err, io.EOF)
			test.String(t, string(b), input)
			test.That(t, !c.More(), "no more data after EOF")
		})
	}
}

func TestChunkReaderRefills(t *testing.T) {
	var tests = []struct {
		input   string
		size    int
		refills int
	}{
		{"", 4, 1},
		{"ab", 4, 2},      // short chunk, then EOF
		{"abcdef", 3, 3},  // final chunk exactly fills the buffer, one extra empty refill
		{"abcdefg", 3, 4}, // two full chunks, one short, then EOF
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := NewChunkReader(strings.NewReader(tt.input), tt.size)
			b, err := readAll(c)
			test.T(t, err, io.EOF)
			test.String(t, string(b), tt.input)
			test.T(t, c.Refills(), tt.refills)
		})
	}
}

func TestChunkReaderBuffered(t *testing.T) {
	c := NewChunkReader(strings.NewReader("abcdef"), 4)
	b, err := c.ReadByte()
	test.Error(t, err)
	test.T(t, b, byte('a'))
	test.String(t, string(c.Buffered()), "bcd")
	test.That(t, c.More())
}

func TestChunkReaderZeroSize(t *testing.T) {
	r := &readerMockup{[]byte("data"), 4, io.EOF}
	c := NewChunkReader(r, 0)
	_, err := c.ReadByte()
	test.T(t, err, io.EOF)
	test.T(t, c.Refills(), 0)
	test.T(t, len(r.data), 4, "underlying reader untouched")

	c = NewChunkReader(r, -1)
	_, err = c.ReadByte()
	test.T(t, err, io.EOF)
}

func TestChunkReaderErrors(t *testing.T) {
	c := NewChunkReader(test.NewErrorReader(0), 8)
	_, err := c.ReadByte()
	test.T(t, err, test.ErrPlain)

	// bytes read before the error are delivered first
	c = NewChunkReader(&readerMockup{[]byte("ab"), 8, test.ErrPlain}, 8)
	b, err := readAll(c)
	test.T(t, err, test.ErrPlain)
	test.String(t, string(b), "ab")
	_, err = c.ReadByte()
	test.T(t, err, test.ErrPlain, "errors are sticky")

	c = NewChunkReader(emptyReader{}, 8)
	_, err = c.ReadByte()
	test.T(t, err, io.ErrNoProgress)
	test.T(t, c.Refills(), maxEmptyReads)
}

func TestDecoder(t *testing.T) {
	input := "a€😀é z"
	var runes []rune
	var sizes []int
	for _, c := range input {
		runes = append(runes, c)
		sizes = append(sizes, len(string(c)))
	}

	for _, size := range []int{1, 2, 3, 5, 64} {
		for _, n := range []int{1, 3, 64} {
			t.Run(fmt.Sprint(size, "/", n), func(t *testing.T) {
				d := NewDecoder(NewChunkReader(&readerMockup{[]byte(input), n, io.EOF}, size))
				i := 0
				for {
					c, m, err := d.ReadRune()
					if err == io.EOF {
						break
					}
					test.Error(t, err)
					test.T(t, c, runes[i])
					test.T(t, m, sizes[i])
					i++
				}
				test.T(t, i, len(runes))
				test.T(t, d.Offset(), int64(len(input)))
			})
		}
	}
}

func TestDecoderReplacementChar(t *testing.T) {
	d := NewDecoder(NewChunkReader(strings.NewReader("�"), 2))
	c, n, err := d.ReadRune()
	test.Error(t, err)
	test.T(t, c, '�')
	test.T(t, n, 3)
}

func TestDecoderInvalid(t *testing.T) {
	var tests = []struct {
		input  string
		offset int64
		bytes  []byte
	}{
		{"\xff", 0, []byte{0xff}},
		{"a\x80", 1, []byte{0x80}},
		{"ab\xe2\x82", 2, []byte{0xe2, 0x82}}, // truncated
		{"\xe2(\xa1", 0, []byte{0xe2, '(', 0xa1}},
		{"\xc0\x80", 0, []byte{0xc0}},                            // overlong
		{"\xed\xa0\x80", 0, []byte{0xed, 0xa0, 0x80}},             // surrogate
		{"€\xf4\x90\x80\x80", 3, []byte{0xf4, 0x90, 0x80, 0x80}}, // above U+10FFFF
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			d := NewDecoder(NewChunkReader(strings.NewReader(tt.input), 1))
			var err error
			for err == nil {
				_, _, err = d.ReadRune()
			}
			test.That(t, errors.Is(err, ErrInvalidUTF8), "must be invalid UTF-8:", err)

			var decodeErr *DecodeError
			test.That(t, errors.As(err, &decodeErr))
			test.T(t, decodeErr.Offset, tt.offset)
			test.T(t, d.Offset(), tt.offset, "offset stops at the invalid sequence")
			test.Bytes(t, decodeErr.Bytes, tt.bytes)

			_, _, err2 := d.ReadRune()
			test.T(t, err2, err, "errors are sticky")
		})
	}
}

func TestDecoderReaderError(t *testing.T) {
	d := NewDecoder(NewChunkReader(&readerMockup{[]byte("\xe2\x82"), 1, test.ErrPlain}, 1))
	_, _, err := d.ReadRune()
	test.T(t, err, test.ErrPlain)
}
