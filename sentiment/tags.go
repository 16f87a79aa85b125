package sentiment

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
)

// maxTags caps how many tags enrich a recommendation record.
const maxTags = 5

// TopTags extracts up to n distinct tags from text: lower-cased word
// tokens, stop-words and non-alphabetic tokens discarded, ranked by
// frequency with ties broken by first-encountered order.
func TopTags(text string, n int) []string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)

	counts := make(map[string]int)
	var order []string
	for _, token := range strings.Fields(cleaned) {
		if !isAlpha(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

func isAlpha(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(token) > 0
}
