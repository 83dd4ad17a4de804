package json

import (
	"unicode"
)

// escapeCooldown is the number of characters, starting at a backslash followed by a quote,
// during which a quote does not close the string.
const escapeCooldown = 4

// State decides which characters of a JSON text are kept. It tracks whether the current
// character is inside a string literal. An escaped quote is recognised by a cool-down:
// after a backslash that is followed by a quote, the next quotes within the cool-down
// window do not close the string. This does not handle an escaped backslash before the
// closing quote, as in "\\" which leaves the string open.
type State struct {
	inString bool
	cooldown int
}

// Keep reports whether cur is kept, next is the character following cur if more is true.
func (s *State) Keep(cur, next rune, more bool) bool {
	if !s.inString && cur == '"' {
		s.inString = true
	} else if s.inString {
		if cur == '\\' && more && next == '"' {
			s.cooldown = escapeCooldown
		}
		if 0 < s.cooldown {
			s.cooldown--
		} else if cur == '"' {
			s.inString = false
		}
	}
	return keep(cur, s.inString)
}

// InString returns true if the last character passed to Keep is inside a string literal.
func (s *State) InString() bool {
	return s.inString
}

// ParityState decides which characters of a JSON text are kept like State, but a quote
// closes the string only when it is preceded by an even number of backslashes.
type ParityState struct {
	inString    bool
	backslashes int
}

// Keep reports whether cur is kept. The lookahead is not used.
func (s *ParityState) Keep(cur, _ rune, _ bool) bool {
	if !s.inString {
		s.inString = cur == '"'
		s.backslashes = 0
	} else if cur == '\\' {
		s.backslashes++
	} else {
		if cur == '"' && s.backslashes%2 == 0 {
			s.inString = false
		}
		s.backslashes = 0
	}
	return keep(cur, s.inString)
}

// InString returns true if the last character passed to Keep is inside a string literal.
func (s *ParityState) InString() bool {
	return s.inString
}

// keep drops ASCII control characters everywhere and whitespace outside of strings.
func keep(c rune, inString bool) bool {
	if c < 0x20 || c == 0x7F {
		return false
	}
	return inString || !unicode.IsSpace(c)
}
