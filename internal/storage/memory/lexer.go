package memory

import (
	"strings"
	"unicode"
)

// tokenize splits text into lowercase search terms. Runs of letters and
// digits starting with a letter form words; numbers keep their internal
// separators so dates, prices and versions stay whole; everything else is
// a separator.
func tokenize(text string) []string {
	runes := []rune(strings.ToLower(text))
	var tokens []string
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsLetter(r):
			j := i + 1
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		case unicode.IsDigit(r) || r == '$':
			j := i + 1
			for j < len(runes) && isNumberRune(runes[j]) {
				j++
			}
			token := strings.TrimRight(string(runes[i:j]), ",.-_/:")
			if token != "" && token != "$" {
				tokens = append(tokens, token)
			}
			i = j
		default:
			i++
		}
	}
	return tokens
}

func isNumberRune(r rune) bool {
	if unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ',', '.', '_', '-', '/', ':':
		return true
	}
	return false
}
