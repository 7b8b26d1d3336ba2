package helpers

import "strings"

const hexChars = "0123456789ABCDEF"

// QuoteForJS renders text as a JavaScript string literal using the given
// quote character. The text is WTF-8, so lone surrogates produced by escapes
// such as "\uD800" survive as "\u" escapes instead of turning into U+FFFD.
func QuoteForJS(text string, quote byte) string {
	sb := strings.Builder{}
	sb.Grow(len(text) + 2)
	sb.WriteByte(quote)

	for i := 0; i < len(text); {
		c, width := DecodeWTF8Rune(text[i:])
		if width == 0 {
			break
		}
		i += width

		switch c {
		case '\b':
			sb.WriteString("\\b")
		case '\f':
			sb.WriteString("\\f")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		case '\v':
			sb.WriteString("\\v")
		case '\\':
			sb.WriteString("\\\\")

		case 0:
			// "\0" followed by a digit would read as a legacy octal escape
			if i < len(text) && text[i] >= '0' && text[i] <= '9' {
				sb.WriteString("\\x00")
			} else {
				sb.WriteString("\\0")
			}

		case '\'', '"':
			if byte(c) == quote {
				sb.WriteByte('\\')
			}
			sb.WriteByte(byte(c))

		case '\u2028', '\u2029', '\uFEFF':
			writeUnicodeEscape(&sb, c)

		default:
			switch {
			case c < 0x20 || c == 0x7F:
				sb.WriteString("\\x")
				sb.WriteByte(hexChars[c>>4])
				sb.WriteByte(hexChars[c&15])
			case c >= 0xD800 && c <= 0xDFFF:
				writeUnicodeEscape(&sb, c)
			default:
				sb.WriteString(text[i-width : i])
			}
		}
	}

	sb.WriteByte(quote)
	return sb.String()
}

func writeUnicodeEscape(sb *strings.Builder, c rune) {
	sb.WriteString("\\u")
	sb.WriteByte(hexChars[(c>>12)&15])
	sb.WriteByte(hexChars[(c>>8)&15])
	sb.WriteByte(hexChars[(c>>4)&15])
	sb.WriteByte(hexChars[c&15])
}
