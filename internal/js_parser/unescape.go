package js_parser

import (
	"unicode/utf8"

	"github.com/esm2cjs/esm2cjs/internal/helpers"
)

// decodeString returns the value of a quoted string literal.
func decodeString(quoted string) (string, bool) {
	if len(quoted) < 2 {
		return "", false
	}
	return decodeEscapeSequences(quoted[1 : len(quoted)-1])
}

// decodeEscapeSequences computes the value of string literal or template
// text. The result is built as UTF-16 so lone surrogates from "\uD800" style
// escapes survive. Returns false for a malformed escape, which is only legal
// in tagged templates.
func decodeEscapeSequences(text string) (string, bool) {
	decoded := []uint16{}
	i := 0

	for i < len(text) {
		c, width := utf8.DecodeRuneInString(text[i:])
		i += width

		switch c {
		case '\r':
			// Line terminators inside templates are normalized to "\n"
			if i < len(text) && text[i] == '\n' {
				i++
			}
			decoded = append(decoded, '\n')
			continue

		case '\\':
			if i >= len(text) {
				return "", false
			}
			c2, width2 := utf8.DecodeRuneInString(text[i:])
			i += width2

			switch c2 {
			case 'b':
				decoded = append(decoded, '\b')
				continue

			case 'f':
				decoded = append(decoded, '\f')
				continue

			case 'n':
				decoded = append(decoded, '\n')
				continue

			case 'r':
				decoded = append(decoded, '\r')
				continue

			case 't':
				decoded = append(decoded, '\t')
				continue

			case 'v':
				decoded = append(decoded, '\v')
				continue

			case '0', '1', '2', '3', '4', '5', '6', '7':
				// 1-3 digit octal
				value := c2 - '0'
				if i < len(text) && text[i] >= '0' && text[i] <= '7' {
					value = value*8 + rune(text[i]-'0')
					i++
					if i < len(text) && text[i] >= '0' && text[i] <= '7' {
						if temp := value*8 + rune(text[i]-'0'); temp < 256 {
							value = temp
							i++
						}
					}
				}
				c = value

			case 'x':
				// 2-digit hexadecimal
				value, ok := hexValue(text, i, 2)
				if !ok {
					return "", false
				}
				i += 2
				c = value

			case 'u':
				if i < len(text) && text[i] == '{' {
					// Variable-length
					end := i + 1
					for end < len(text) && text[end] != '}' {
						end++
					}
					if end == len(text) || end == i+1 {
						return "", false
					}
					value, ok := hexValue(text, i+1, end-i-1)
					if !ok || value > utf8.MaxRune {
						return "", false
					}
					i = end + 1
					c = value
				} else {
					// Fixed-length
					value, ok := hexValue(text, i, 4)
					if !ok {
						return "", false
					}
					i += 4
					c = value
				}

			case '\r':
				// Line continuations produce nothing
				if i < len(text) && text[i] == '\n' {
					i++
				}
				continue

			case '\n', '\u2028', '\u2029':
				continue

			default:
				c = c2
			}
		}

		if c <= 0xFFFF {
			decoded = append(decoded, uint16(c))
		} else {
			c -= 0x10000
			decoded = append(decoded, uint16(0xD800+((c>>10)&0x3FF)), uint16(0xDC00+(c&0x3FF)))
		}
	}

	return helpers.UTF16ToString(decoded), true
}

func hexValue(text string, start int, count int) (rune, bool) {
	if start+count > len(text) {
		return 0, false
	}
	value := rune(0)
	for _, c := range text[start : start+count] {
		switch {
		case c >= '0' && c <= '9':
			value = value*16 | (c - '0')
		case c >= 'a' && c <= 'f':
			value = value*16 | (c + 10 - 'a')
		case c >= 'A' && c <= 'F':
			value = value*16 | (c + 10 - 'A')
		default:
			return 0, false
		}
		if value > utf8.MaxRune {
			return value, false
		}
	}
	return value, true
}
