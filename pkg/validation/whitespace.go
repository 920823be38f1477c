package validation

import "strings"

// spaceClass is the whitespace set browsers apply for \s and String.prototype.trim:
// ASCII whitespace including \v, the Unicode space separators, the line and
// paragraph separators and the BOM. Go's \s only covers [\t\n\f\r ].
const spaceClass = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
