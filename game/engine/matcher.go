package engine

import "strings"

// Match classifies a candidate word.
type Match int

const (
	// MatchPrefix means the candidate still starts some unfound word.
	MatchPrefix Match = iota
	// MatchFound means the candidate is an unfound word and was recorded.
	MatchFound
	// MatchDeadEnd means no unfound word starts with the candidate.
	MatchDeadEnd
)

// String returns the match name.
func (m Match) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchFound:
		return "found"
	case MatchDeadEnd:
		return "dead_end"
	default:
		return "unknown"
	}
}

// WordMatcher owns the found words and the score of a round.
type WordMatcher struct {
	words     []string
	found     map[string]bool
	order     []string
	announced bool
}

// NewWordMatcher creates a matcher for words.
func NewWordMatcher(words []string) *WordMatcher {
	return &WordMatcher{
		words: append([]string(nil), words...),
		found: make(map[string]bool, len(words)),
	}
}

// Evaluate classifies candidate against the words not found yet. complete is
// true on the single call that finds the last word.
func (m *WordMatcher) Evaluate(candidate string) (match Match, complete bool) {
	if candidate == "" {
		return MatchPrefix, false
	}

	for _, w := range m.words {
		if w == candidate && !m.found[w] {
			m.found[w] = true
			m.order = append(m.order, w)
			if m.IsComplete() && !m.announced {
				m.announced = true
				return MatchFound, true
			}
			return MatchFound, false
		}
	}

	for _, w := range m.words {
		if !m.found[w] && strings.HasPrefix(w, candidate) {
			return MatchPrefix, false
		}
	}
	return MatchDeadEnd, false
}

// Score returns the number of words found.
func (m *WordMatcher) Score() int {
	return len(m.order)
}

// Found returns the found words in the order they were found.
func (m *WordMatcher) Found() []string {
	return append([]string(nil), m.order...)
}

// IsFound reports whether word has been found.
func (m *WordMatcher) IsFound(word string) bool {
	return m.found[word]
}

// Remaining returns the unfound words in list order.
func (m *WordMatcher) Remaining() []string {
	var out []string
	for _, w := range m.words {
		if !m.found[w] {
			out = append(out, w)
		}
	}
	return out
}

// Words returns the full word list.
func (m *WordMatcher) Words() []string {
	return append([]string(nil), m.words...)
}

// Total returns the size of the word list.
func (m *WordMatcher) Total() int {
	return len(m.words)
}

// IsComplete reports whether every word has been found.
func (m *WordMatcher) IsComplete() bool {
	return len(m.words) > 0 && len(m.order) == len(m.words)
}
