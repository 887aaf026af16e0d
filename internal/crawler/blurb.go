package crawler

import "strings"

// Blurb derives a short preview from extracted page text. Texts of five words
// or fewer are returned whole, texts under thirty words lose their first five
// words, and longer texts yield words 10 through 29.
func Blurb(text string) string {
	words := strings.Fields(text)
	switch {
	case len(words) <= 5:
		return strings.Join(words, " ")
	case len(words) < 30:
		return strings.Join(words[5:], " ")
	default:
		return strings.Join(words[10:30], " ")
	}
}
