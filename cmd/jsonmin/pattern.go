package main

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern matches paths by a glob, or by a regular expression when it starts with '~'.
// Globs use forward slashes, '*' does not cross directories and '**' does.
type pattern struct {
	glob string
	re   *regexp.Regexp
}

func compilePattern(s string) (pattern, error) {
	if 0 < len(s) && s[0] == '~' {
		re, err := regexp.Compile(s[1:])
		if err != nil {
			return pattern{}, err
		}
		return pattern{re: re}, nil
	}

	if strings.HasPrefix(s, `\~`) {
		s = s[1:]
	}
	s = filepath.ToSlash(s)
	if !doublestar.ValidatePattern(s) {
		return pattern{}, fmt.Errorf("bad pattern %q", s)
	}
	return pattern{glob: s}, nil
}

// Match returns true if the path matches the pattern.
func (p pattern) Match(name string) bool {
	if p.re != nil {
		return p.re.MatchString(name)
	}
	ok, _ := doublestar.Match(p.glob, filepath.ToSlash(name))
	return ok
}

func (p pattern) String() string {
	if p.re != nil {
		return "~" + p.re.String()
	}
	return p.glob
}

func compilePatterns(ss []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(ss))
	for _, s := range ss {
		p, err := compilePattern(s)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func matchAny(patterns []pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
