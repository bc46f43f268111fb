package policy

import (
	"regexp"
	"strings"

	"messenger/internal/app/model"
)

var (
	lowWords = []string{
		"fuck", "shit", "bitch", "ass", "dick", "pussy", "whore", "bastard", "cunt", "damn", "hell",
	}
	mediumWords = []string{
		"stupid", "idiot", "moron", "dumb", "loser", "ugly", "fat", "shut up", "hate", "crappy",
	}
	maxWords = []string{
		"bad", "annoying", "boring", "weird", "mess", "suck", "fail", "trash", "lazy", "terrible", "worst",
	}
)

var filters = map[model.FilterLevel]*regexp.Regexp{
	model.FilterLow:    wordPattern(lowWords),
	model.FilterMedium: wordPattern(lowWords, mediumWords),
	model.FilterMax:    wordPattern(lowWords, mediumWords, maxWords),
}

func wordPattern(lists ...[]string) *regexp.Regexp {
	var quoted []string
	for _, list := range lists {
		for _, w := range list {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Censor masks every listed word at level with asterisks of the same length.
// Matching is case-insensitive and respects word boundaries. Unknown levels
// fall back to medium.
func Censor(text string, level model.FilterLevel) string {
	re, ok := filters[level]
	if !ok {
		re = filters[model.FilterMedium]
	}
	return re.ReplaceAllStringFunc(text, func(word string) string {
		return strings.Repeat("*", len(word))
	})
}
