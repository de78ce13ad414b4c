package gerber

import "strings"

// Token is one (line_number, command_text) pair produced by Tokenize.
type Token struct {
	Line int
	Text string
}

// Tokenize splits raw Gerber source into word commands and extended
// (%-delimited) commands, tracking line numbers (spec.md §4.3).
//
// A '%' toggles extended-command state, except inside a G04 comment word
// command (a workaround for vendors that put literal '%' characters inside
// comments). A '*', '\r', or '\n' ends a word command when not extended.
// Extended commands span from one '%' to the next and may contain newlines.
func Tokenize(src string) []Token {
	var tokens []Token
	line := 1
	extended := false
	var buf strings.Builder
	inG04 := false

	flush := func(startLine int) {
		text := buf.String()
		buf.Reset()
		if strings.TrimSpace(text) != "" {
			tokens = append(tokens, Token{Line: startLine, Text: strings.TrimSpace(text)})
		}
	}

	tokenStartLine := line
	i := 0
	for i < len(src) {
		c := src[i]
		switch c {
		case '\n':
			line++
			if !extended {
				flush(tokenStartLine)
				tokenStartLine = line
				inG04 = false
			} else {
				buf.WriteByte(c)
			}
		case '\r':
			if !extended {
				flush(tokenStartLine)
				tokenStartLine = line
				inG04 = false
			} else {
				buf.WriteByte(c)
			}
		case '%':
			// Inside a G04 comment word, '%' is literal (vendor
			// workaround); otherwise it toggles extended-command state.
			if !extended && isG04Prefix(buf.String()) {
				inG04 = true
				buf.WriteByte(c)
			} else if inG04 {
				buf.WriteByte(c)
			} else {
				extended = !extended
				if !extended {
					// Closing '%': flush the extended command as-is
					// (including embedded newlines collapsed to spaces
					// isn't done; callers that split statements handle
					// embedded '*' themselves).
					flush(tokenStartLine)
					tokenStartLine = line
				} else {
					// Opening '%': anything accumulated so far (should
					// be only whitespace) is discarded.
					buf.Reset()
					tokenStartLine = line
				}
			}
		case '*':
			if !extended && !inG04 {
				flush(tokenStartLine)
				tokenStartLine = line
			} else {
				buf.WriteByte(c)
			}
		default:
			buf.WriteByte(c)
		}
		i++
	}
	flush(tokenStartLine)

	return tokens
}

func isG04Prefix(buf string) bool {
	s := strings.TrimSpace(buf)
	return strings.HasPrefix(s, "G04") || strings.HasPrefix(s, "G4")
}
