package llm

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	apperrors "colosseum/errors"
)

// KeywordMatcher spots any of a fixed set of topic keywords inside a chat
// message using an Aho-Corasick automaton, so one pass over the text covers
// every pattern.
type KeywordMatcher struct {
	matcher *goahocorasick.Machine
}

// NewKeywordMatcher builds the automaton over lower-cased patterns.
func NewKeywordMatcher(keywords []string) (*KeywordMatcher, error) {
	if len(keywords) == 0 {
		return nil, apperrors.ErrEmptyPatterns
	}
	patterns := make([][]rune, len(keywords))
	for i, word := range keywords {
		patterns[i] = lowerRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &KeywordMatcher{matcher: m}, nil
}

// MatchesAny reports whether at least one keyword occurs in the text.
func (k *KeywordMatcher) MatchesAny(text string) bool {
	spans := k.matcher.MultiPatternSearch(lowerRunes([]rune(text)), true)
	return len(spans) > 0
}

func lowerRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = unicode.ToLower(r)
	}
	return out
}
