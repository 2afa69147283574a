package curl

import "strings"

// token is one shell word. quoted records whether any part of the word was
// quoted, which the URL picker uses to prefer explicitly quoted URLs.
type token struct {
	text   string
	quoted bool
}

// tokenize splits normalized command text into shell words. It understands
// single quotes, double quotes with backslash escapes, ANSI-C $'...' quoting
// and concatenated quoted segments within one word.
func tokenize(s string) []token {
	var toks []token
	i, n := 0, len(s)

	for i < n {
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}

		var sb strings.Builder
		quoted := false

		for i < n && !isSpace(s[i]) {
			switch {
			case s[i] == '\'':
				quoted = true
				i++
				for i < n && s[i] != '\'' {
					sb.WriteByte(s[i])
					i++
				}
				if i < n {
					i++ // closing quote
				}

			case s[i] == '"':
				quoted = true
				i++
				for i < n && s[i] != '"' {
					if s[i] == '\\' && i+1 < n {
						i++
					}
					sb.WriteByte(s[i])
					i++
				}
				if i < n {
					i++
				}

			case s[i] == '$' && i+1 < n && s[i+1] == '\'':
				quoted = true
				i += 2
				for i < n && s[i] != '\'' {
					if s[i] == '\\' && i+1 < n {
						i++
						sb.WriteByte(unescapeANSIC(s[i]))
					} else {
						sb.WriteByte(s[i])
					}
					i++
				}
				if i < n {
					i++
				}

			case s[i] == '\\' && i+1 < n:
				i++
				sb.WriteByte(s[i])
				i++

			default:
				sb.WriteByte(s[i])
				i++
			}
		}

		toks = append(toks, token{text: sb.String(), quoted: quoted})
	}

	return toks
}

func unescapeANSIC(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
