// Package format implements the positional-substitution micro-grammar
// embedded in catalog messages.
//
// A specifier is the literal "{%" followed by one to three decimal digits
// and a closing "}". The digits select an argument index in [0, 999] with no
// leading-zero normalization, so "{%0}" and "{%00}" both select argument
// zero. Anything else after "{%" rejects that candidate only; the text is
// kept verbatim and scanning continues.
package format

import "strings"

type spec struct {
	off int // offset of the opening '{' in the input
	n   int // total specifier length, 3 + number of digits
	idx int // selected argument index
}

// findSpec locates the first valid specifier at or after start. A rejected
// candidate does not rewind: the search for the next "{%" resumes right
// after the rejected opener, so "{%{%0}" still finds "{%0}".
func findSpec(s string, start int) (spec, bool) {
	for start < len(s) {
		rel := strings.Index(s[start:], "{%")
		if rel < 0 {
			break
		}
		open := start + rel
		digits := 0
	candidate:
		for i := open + 2; i < len(s); i++ {
			switch c := s[i]; {
			case c == '}':
				if digits == 0 {
					break candidate
				}
				idx := 0
				for j := open + 2; j < i; j++ {
					idx = idx*10 + int(s[j]-'0')
				}
				return spec{off: open, n: 3 + digits, idx: idx}, true
			case c >= '0' && c <= '9':
				digits++
				if digits > 3 {
					break candidate
				}
			default:
				break candidate
			}
		}
		start = open + 2
	}
	return spec{}, false
}

// IsFormattable reports whether s contains at least one valid specifier.
func IsFormattable(s string) bool {
	_, ok := findSpec(s, 0)
	return ok
}

// FormatString returns a copy of s with every valid specifier replaced by
// its positional argument. Malformed candidates are copied through
// unchanged. If any specifier selects an argument that was not supplied the
// result is the empty string; partial expansions are never surfaced.
func FormatString(s string, args ...string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	size := len(s)
	for _, arg := range args {
		size += len(arg)
	}
	b.Grow(size)
	pos := 0
	for {
		sp, ok := findSpec(s, pos)
		if !ok {
			b.WriteString(s[pos:])
			break
		}
		if sp.idx >= len(args) {
			return ""
		}
		b.WriteString(s[pos:sp.off])
		b.WriteString(args[sp.idx])
		pos = sp.off + sp.n
	}
	return b.String()
}
