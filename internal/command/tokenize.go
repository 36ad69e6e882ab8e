package command

import "strings"

// Tokenize splits a command line into words, honoring single and double
// quotes so multi-word item names and notes survive as one token
// ("camera bag" stays together). Quote characters are consumed, an
// unterminated quote runs to the end of the line, and a backslash
// outside single quotes escapes the next character.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	inWord := false
	quote := rune(0) // active quote char, 0 when unquoted
	escaped := false

	flush := func() {
		if inWord {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inWord = false
		}
	}

	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			inWord = true
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true // a bare "" is still an (empty) token
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	flush()
	return tokens
}
