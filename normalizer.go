package main

import (
	"regexp"
	"strings"
)

// TitleNormalizer cleans raw listing titles into a canonical token form for
// comparison. Normalization is deterministic and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
type TitleNormalizer struct {
	stopWords  map[string]struct{}
	nonWord    *regexp.Regexp
	whitespace *regexp.Regexp
}

// NewTitleNormalizer creates a normalizer using the vocabulary's stop words.
func NewTitleNormalizer(vocab *Vocabulary) *TitleNormalizer {
	stop := make(map[string]struct{})
	for _, w := range vocab.StopWords {
		stop[w] = struct{}{}
	}
	return &TitleNormalizer{
		stopWords: stop,
		// Word characters survive so model numbers like "victus 15" and
		// "i5-1235u" keep their digits; everything else becomes a space.
		nonWord:    regexp.MustCompile(`[^\w\s]`),
		whitespace: regexp.MustCompile(`\s+`),
	}
}

// Normalize lower-cases the title, strips punctuation and stop words, and
// collapses whitespace. Empty input yields an empty string.
func (n *TitleNormalizer) Normalize(title string) string {
	t := strings.ToLower(title)
	t = n.nonWord.ReplaceAllString(t, " ")
	t = n.whitespace.ReplaceAllString(t, " ")

	words := strings.Fields(t)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, drop := n.stopWords[w]; drop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens returns the normalized title as a token set for overlap scoring.
func (n *TitleNormalizer) Tokens(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(n.Normalize(title)) {
		set[w] = struct{}{}
	}
	return set
}
