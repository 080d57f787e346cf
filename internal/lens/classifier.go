package lens

import "strings"

// Intent is the visitor's choice about entering the lens flow.
type Intent string

const (
	IntentPositive Intent = "positive"
	IntentNegative Intent = "negative"
	IntentUnclear  Intent = "unclear"
)

// Classifier decides the visitor's intent from a free-text turn. The
// keyword matcher below is the default; richer classifiers plug in here.
type Classifier interface {
	Choice(text string) Intent
}

// KeywordClassifier matches case-insensitive substrings against small
// keyword lists. Negative keywords are checked first so "no, skip it"
// never reads as interest. Substring matching has known false positives:
// "no" also matches inside longer words like "november".
type KeywordClassifier struct{}

var (
	positiveKeywords = []string{
		"yes", "explore", "try", "okay", "continue",
		"go ahead", "deeper", "help", "what next", "tell me more",
	}
	negativeKeywords = []string{"no", "skip", "not now", "later"}
)

func (KeywordClassifier) Choice(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, k := range negativeKeywords {
		if strings.Contains(lower, k) {
			return IntentNegative
		}
	}
	for _, k := range positiveKeywords {
		if strings.Contains(lower, k) {
			return IntentPositive
		}
	}
	return IntentUnclear
}
