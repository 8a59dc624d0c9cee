package token

import "unicode"

type Type int

const (
	LParen Type = iota
	RParen
	Ident
	String
	Number
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits WAT source into tokens. Line and block comments are
// skipped; block comments nest.
func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '\n':
			line++

		case unicode.IsSpace(r):

		case r == ';' && i+1 < len(runes) && runes[i+1] == ';':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++

		case r == '(' && i+1 < len(runes) && runes[i+1] == ';':
			depth := 1
			for i += 2; i < len(runes) && depth > 0; i++ {
				switch {
				case runes[i] == '(' && i+1 < len(runes) && runes[i+1] == ';':
					depth++
					i++
				case runes[i] == ';' && i+1 < len(runes) && runes[i+1] == ')':
					depth--
					i++
				case runes[i] == '\n':
					line++
				}
			}
			i--

		case r == '(':
			tokens = append(tokens, Token{"(", LParen, line})

		case r == ')':
			tokens = append(tokens, Token{")", RParen, line})

		case r == '"':
			start := i + 1
			for i++; i < len(runes) && runes[i] != '"'; i++ {
				if runes[i] == '\\' {
					i++
				}
			}
			tokens = append(tokens, Token{string(runes[start:min(i, len(runes))]), String, line})

		case r == '-' || r == '+' || unicode.IsDigit(r):
			start := i
			for i++; i < len(runes) && isNumberRune(runes[i]); i++ {
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line})
			i--

		default:
			start := i
			for i++; i < len(runes) && isIdentRune(runes[i]); i++ {
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
		}
	}

	return tokens
}

func isNumberRune(c rune) bool {
	return unicode.IsDigit(c) || c == '_' || c == 'x' || c == 'X' ||
		(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentRune(c rune) bool {
	if unicode.IsSpace(c) {
		return false
	}
	return c != '(' && c != ')' && c != '"' && c != ';'
}
