package normalizer

import (
	ac "github.com/petar-dambovaliev/aho-corasick"
)

// literalTable assigns ids to distinct literal texts in first-seen order.
type literalTable struct {
	literals []string
	ids      map[string]int
}

func newLiteralTable() *literalTable {
	return &literalTable{ids: make(map[string]int)}
}

func (t *literalTable) id(lit string) int {
	if id, ok := t.ids[lit]; ok {
		return id
	}
	id := len(t.literals)
	t.ids[lit] = id
	t.literals = append(t.literals, lit)
	return id
}

// prefilter finds every template literal present in a line with a single
// Aho-Corasick pass. A template with an absent literal cannot match, so it
// is skipped without running its segments.
type prefilter struct {
	automaton ac.AhoCorasick
	literals  []string
}

func newPrefilter(literals []string) *prefilter {
	// Overlapping iteration requires standard match semantics.
	builder := ac.NewAhoCorasickBuilder(ac.Opts{
		MatchKind: ac.StandardMatch,
	})
	return &prefilter{
		automaton: builder.Build(literals),
		literals:  literals,
	}
}

// scan returns, indexed by literal id, whether each literal occurs in line.
// A nil prefilter returns nil, which admits every template.
func (p *prefilter) scan(line string) []bool {
	if p == nil {
		return nil
	}
	found := make([]bool, len(p.literals))
	iter := p.automaton.IterOverlapping(line)
	for m := iter.Next(); m != nil; m = iter.Next() {
		found[m.Pattern()] = true
	}
	return found
}

func (cr *compiledRule) admitted(found []bool) bool {
	if found == nil {
		return true
	}
	for _, id := range cr.literals {
		if !found[id] {
			return false
		}
	}
	return true
}
