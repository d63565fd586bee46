package content

import (
	"strconv"
	"strings"
	"unicode"
)

// Normalize lowercases text, trims it, and collapses internal whitespace
// runs to a single space.
func Normalize(text string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(text), unicode.IsSpace), " ")
}

// GroupKey fingerprints a batch of cards by their normalized front text.
// Progress is stored per (user, group key, card id), so two decks with the
// same fronts share progress.
//
// The fingerprint is a 32-bit multiplicative rolling hash (h = h*31 + r)
// rendered in base 36. It is weak: unrelated decks can collide, and when
// they do they share review progress for cards with matching ids. That is
// accepted behavior. Changing the function orphans all stored progress, so
// it must stay stable.
func GroupKey(cards []Card) string {
	var h int32
	for i, c := range cards {
		if i > 0 {
			h = h*31 + '|'
		}
		for _, r := range Normalize(c.Front) {
			h = h*31 + int32(r)
		}
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
