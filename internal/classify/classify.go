// Package classify implements the heuristic test for whether a text snippet
// looks like a question worth forwarding to the answer API.
package classify

import "strings"

// vocabulary lists the question-indicating words and phrases. A candidate
// matches when one of these is its prefix or appears as a whole word.
var vocabulary = []string{
	"what", "why", "how", "when", "which", "where", "who",
	"can you", "could you", "would you", "should we", "do you",
	"tell me", "explain", "describe", "walk me", "difference", "compare",
	"is there", "are there", "have you", "will this",
}

// Options control classification. MinLength rejects short snippets before
// any matching runs. RequireQuestionMark demands both a '?' and a
// vocabulary hit; otherwise either alone is enough.
type Options struct {
	MinLength           int
	RequireQuestionMark bool
}

// LooksLikeQuestion reports whether trimmed text passes the heuristic.
func LooksLikeQuestion(text string, opts Options) bool {
	t := strings.TrimSpace(text)
	if len(t) < opts.MinLength {
		return false
	}

	hasMark := strings.ContainsRune(t, '?')
	hasWord := hasVocabularyHit(strings.ToLower(t))

	if opts.RequireQuestionMark {
		return hasMark && hasWord
	}
	return hasMark || hasWord
}

func hasVocabularyHit(lower string) bool {
	for _, w := range vocabulary {
		if strings.HasPrefix(lower, w) || strings.Contains(lower, " "+w+" ") {
			return true
		}
	}
	return false
}
