package stream

import (
	"errors"
	"fmt"
)

// ErrInvalidUTF8 is matched by a *DecodeError.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

var errInvalidRead = errors.New("stream: reader returned invalid count")

// DecodeError is returned when the byte stream holds a sequence that is not valid UTF-8,
// including a multi-byte sequence that is cut off by the end of the stream.
type DecodeError struct {
	Offset int64  // offset of the first byte of the sequence
	Bytes  []byte // the offending bytes
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: % x at offset %d", ErrInvalidUTF8, e.Bytes, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return ErrInvalidUTF8
}
