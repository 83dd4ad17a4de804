// Package json minifies JSON by removing control characters and the whitespace outside of string literals.
// It does not parse nor validate the JSON grammar.
package json

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/jsonmin"
	"github.com/tdewolff/jsonmin/filter"
	"github.com/tdewolff/parse/v2"
)

// DefaultMinifier is the default minifier.
var DefaultMinifier = &Minifier{}

// Minifier is a JSON minifier.
type Minifier struct {
	ChunkSize    int  // size of the read buffer, 0 uses the size of the first Read
	EscapeParity bool // end strings by counting backslashes instead of the escape cool-down
}

// Minify minifies JSON data, it reads from r and writes to w.
func Minify(m *jsonmin.M, w io.Writer, r io.Reader, params map[string]string) error {
	return DefaultMinifier.Minify(m, w, r, params)
}

// String minifies a JSON string using the default minifier.
func String(s string) (string, error) {
	return DefaultMinifier.String(s)
}

// Bytes minifies JSON data using the default minifier.
func Bytes(b []byte) ([]byte, error) {
	return DefaultMinifier.Bytes(b)
}

// Minify minifies JSON data, it reads from r and writes to w.
func (o *Minifier) Minify(_ *jsonmin.M, w io.Writer, r io.Reader, _ map[string]string) error {
	buf := make([]byte, o.bufferSize())
	_, err := io.CopyBuffer(writerOnly{w}, o.NewReader(r), buf)
	return err
}

// NewReader returns a Reader that minifies JSON from r.
func (o *Minifier) NewReader(r io.Reader) *Reader {
	return &Reader{
		r:    r,
		size: o.ChunkSize,
		d:    o.decider(),
	}
}

// String minifies a JSON string. It only fails when s is not valid UTF-8.
func (o *Minifier) String(s string) (string, error) {
	if err := validate(s); err != nil {
		return s, err
	}

	return o.collect(filter.Runes(strings.NewReader(s)))
}

// collect minifies the runes of src in memory.
func (o *Minifier) collect(src filter.Source[rune]) (string, error) {
	runes, err := filter.Collect(filter.New(src, o.decider()))
	return string(runes), err
}

// Bytes minifies JSON data. It only fails when b is not valid UTF-8.
func (o *Minifier) Bytes(b []byte) ([]byte, error) {
	s, err := o.String(string(b))
	if err != nil {
		return b, err
	}
	return []byte(s), nil
}

func (o *Minifier) decider() filter.Decider[rune] {
	if o.EscapeParity {
		return &ParityState{}
	}
	return &State{}
}

func (o *Minifier) bufferSize() int {
	if 0 < o.ChunkSize {
		return o.ChunkSize
	}
	return 32 * 1024
}

// validate returns a parse error at the first byte that is not valid UTF-8.
func validate(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	for i := 0; i < len(s); {
		c, n := utf8.DecodeRuneInString(s[i:])
		if c == utf8.RuneError && n == 1 {
			return parse.NewError(bytes.NewBufferString(s), i, "invalid UTF-8")
		}
		i += n
	}
	return nil
}

// writerOnly hides the io.ReaderFrom of a writer so that io.CopyBuffer uses the given buffer.
type writerOnly struct {
	io.Writer
}
