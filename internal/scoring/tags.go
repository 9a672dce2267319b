package scoring

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-signalhunt/internal/domain"
)

// maxSuggestionRatio caps how much of a tag may differ from a category for
// the category to be offered as a suggestion.
const maxSuggestionRatio = 0.34

// UnknownTag records a subjective bonus tag missing from the category table.
type UnknownTag struct {
	RowID      string `json:"row_id"`
	Team       string `json:"team"`
	Tag        string `json:"tag"`
	Suggestion string `json:"suggestion,omitempty"`
}

// tagMatcher resolves subjective tags to category table entries.
// It is immutable after construction and safe for concurrent use.
type tagMatcher struct {
	table domain.CategoryTable
	fold  bool
	// folded maps a case-folded name to its canonical table name.
	folded  map[string]string
	names   []string
	lengths []int
}

func newTagMatcher(table domain.CategoryTable, caseInsensitive bool) *tagMatcher {
	m := &tagMatcher{
		table: table,
		fold:  caseInsensitive,
		names: table.Names(),
	}
	m.lengths = make([]int, len(m.names))
	for i, name := range m.names {
		m.lengths[i] = utf8.RuneCountInString(name)
	}
	if caseInsensitive {
		// cases.Caser is stateful, so each matcher builds its own.
		caser := cases.Fold()
		m.folded = make(map[string]string, len(m.names))
		for _, name := range m.names {
			m.folded[caser.String(name)] = name
		}
	}
	return m
}

// match returns the canonical category name and its points for tag.
func (m *tagMatcher) match(tag string) (string, float64, bool) {
	if points, ok := m.table.Lookup(tag); ok {
		return tag, points, true
	}
	if !m.fold {
		return "", 0, false
	}
	name, ok := m.folded[cases.Fold().String(tag)]
	if !ok {
		return "", 0, false
	}
	return name, m.table.Points(name), true
}

// suggest returns the closest category name to tag by edit distance, or ""
// when nothing is close enough to be a plausible typo. The rune length
// difference bounds the edit distance from below, so names that cannot
// qualify are skipped before the quadratic comparison.
func (m *tagMatcher) suggest(tag string) string {
	tagLen := utf8.RuneCountInString(tag)
	best := ""
	bestDist := -1
	for i, name := range m.names {
		limit := maxSuggestionRatio * float64(max(tagLen, m.lengths[i]))
		if float64(abs(tagLen-m.lengths[i])) > limit {
			continue
		}
		d := levenshtein.ComputeDistance(tag, name)
		if float64(d) > limit {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
