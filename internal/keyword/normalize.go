package keyword

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lower-cased tokens of letters, digits and inner hyphens.
// A '.' or ',' between two digits stays in the token so "2.5" and "1,000" survive.
func Tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if tok := cleanToken(current.String()); tok != "" {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			current.WriteRune(unicode.ToLower(r))
		case (r == '.' || r == ',') && i > 0 && i+1 < len(runes) &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// Normalize returns the canonical form of a keyword: its tokens joined by single spaces.
// A keyword without letters or digits (">=", "%") is kept as its lower-cased symbol text.
// An empty result means the input holds no keyword.
func Normalize(keyword string) string {
	if tokens := Tokenize(keyword); len(tokens) > 0 {
		return strings.Join(tokens, " ")
	}
	return symbol(keyword)
}

// IsSymbol reports whether a normalized keyword has no letters or digits
func IsSymbol(keyword string) bool {
	return keyword != "" && len(Tokenize(keyword)) == 0
}

// symbol trims surrounding quotes and collapses whitespace
func symbol(keyword string) string {
	s := strings.Trim(strings.TrimSpace(strings.ToLower(keyword)), "\"'`")
	return strings.Join(strings.Fields(s), " ")
}

// cleanToken strips leading/trailing hyphens and collapses hyphen runs
func cleanToken(token string) string {
	token = strings.Trim(token, "-")
	for strings.Contains(token, "--") {
		token = strings.ReplaceAll(token, "--", "-")
	}
	return token
}
