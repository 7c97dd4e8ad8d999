// Package glob implements the key-pattern dialect used by SCAN and KEYS:
// '*', '?', bracket classes with ranges and '^' negation, and backslash
// escapes. Matching is anchored at both ends and operates on bytes.
package glob

import "strings"

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokAny
	tokStar
	tokClass
)

type byteRange struct{ lo, hi byte }

type token struct {
	kind   tokenKind
	lit    byte
	negate bool
	ranges []byteRange
}

func (t *token) matches(c byte) bool {
	switch t.kind {
	case tokAny:
		return true
	case tokLiteral:
		return t.lit == c
	case tokClass:
		in := false
		for _, r := range t.ranges {
			if c >= r.lo && c <= r.hi {
				in = true
				break
			}
		}
		return in != t.negate
	}
	return false
}

// Pattern is a compiled glob.
type Pattern struct {
	source string
	tokens []token
}

// Compile parses pattern. It never fails: malformed class syntax is
// matched literally.
func Compile(pattern string) *Pattern {
	p := &Pattern{source: pattern}
	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			// consecutive stars collapse
			if n := len(p.tokens); n == 0 || p.tokens[n-1].kind != tokStar {
				p.tokens = append(p.tokens, token{kind: tokStar})
			}
			i++
		case '?':
			p.tokens = append(p.tokens, token{kind: tokAny})
			i++
		case '\\':
			if i+1 < len(pattern) {
				p.tokens = append(p.tokens, token{kind: tokLiteral, lit: pattern[i+1]})
				i += 2
			} else {
				p.tokens = append(p.tokens, token{kind: tokLiteral, lit: c})
				i++
			}
		case '[':
			tok, next, ok := parseClass(pattern, i)
			if !ok {
				p.tokens = append(p.tokens, token{kind: tokLiteral, lit: c})
				i++
				continue
			}
			p.tokens = append(p.tokens, tok)
			i = next
		default:
			p.tokens = append(p.tokens, token{kind: tokLiteral, lit: c})
			i++
		}
	}
	return p
}

// parseClass parses the class opening at pattern[start]. ok is false when
// the class is never closed.
func parseClass(pattern string, start int) (token, int, bool) {
	tok := token{kind: tokClass}
	i := start + 1
	if i < len(pattern) && pattern[i] == '^' {
		tok.negate = true
		i++
	}
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == ']':
			return tok, i + 1, true
		case c == '\\' && i+1 < len(pattern):
			tok.ranges = append(tok.ranges, byteRange{pattern[i+1], pattern[i+1]})
			i += 2
		case i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']':
			lo, hi := c, pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			tok.ranges = append(tok.ranges, byteRange{lo, hi})
			i += 3
		default:
			tok.ranges = append(tok.ranges, byteRange{c, c})
			i++
		}
	}
	return token{}, 0, false
}

// String returns the source pattern.
func (p *Pattern) String() string { return p.source }

// Match reports whether name matches the whole pattern.
func (p *Pattern) Match(name string) bool {
	toks := p.tokens
	ti, si := 0, 0
	starTok, starPos := -1, 0

	for si < len(name) {
		if ti < len(toks) {
			if toks[ti].kind == tokStar {
				starTok, starPos = ti, si
				ti++
				continue
			}
			if toks[ti].matches(name[si]) {
				ti++
				si++
				continue
			}
		}
		if starTok < 0 {
			return false
		}
		// let the last star absorb one more byte and retry
		starPos++
		si = starPos
		ti = starTok + 1
	}

	for ti < len(toks) && toks[ti].kind == tokStar {
		ti++
	}
	return ti == len(toks)
}

// Match reports whether name matches pattern.
func Match(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	return Compile(pattern).Match(name)
}

// IsGlob reports whether pattern contains an unescaped '*', '?' or '['.
// A pattern without them can only ever match one key.
func IsGlob(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// Unescape removes backslash escapes, turning a non-glob pattern into the
// key it names.
func Unescape(pattern string) string {
	if !strings.Contains(pattern, `\`) {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i++
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}
