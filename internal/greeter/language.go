package greeter

import (
	"strings"
	"time"
)

// supportedLanguages are the only languages replies may be generated in.
// Anything outside this set falls back to English.
var supportedLanguages = map[string]struct{}{
	"en": {}, "hi": {}, "es": {}, "fr": {}, "de": {}, "pt": {},
	"ar": {}, "zh": {}, "ja": {}, "ru": {}, "bn": {}, "ta": {},
}

// NormalizeLanguage lowercases and validates a language code, returning "en"
// for empty or unsupported values.
func NormalizeLanguage(lang string) string {
	normalized := strings.ToLower(strings.TrimSpace(lang))
	if _, ok := supportedLanguages[normalized]; ok {
		return normalized
	}
	return "en"
}

// TimeOfDay buckets a local time into morning, afternoon, or evening. The
// greeting derives from this bucket and nothing else.
func TimeOfDay(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}
