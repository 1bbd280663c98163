// Package normalizer matches raw log lines against compiled rule sets and
// extracts their fields.
package normalizer

import (
	regexp "github.com/wasilibs/go-re2"

	"github.com/sansecio/lognorm/ast"
)

// Result is the outcome of a successful match.
type Result struct {
	Rule   string         // name of the matching rule
	Line   int            // rule file line of the matching template
	Fields map[string]any // string values, or decoded JSON for json fields
}

// MatchCallback is the interface for receiving per-rule-name matches from
// MatchEach.
type MatchCallback interface {
	RuleMatching(r *Result) (abort bool, err error)
}

// MatchResults collects matching rules and implements MatchCallback.
type MatchResults []Result

// RuleMatching implements MatchCallback, collecting all matches.
func (m *MatchResults) RuleMatching(r *Result) (abort bool, err error) {
	*m = append(*m, *r)
	return false, nil
}

// segment is the compiled form of an ast.Segment. Literal segments have a
// nil field.
type segment struct {
	literal string
	field   *ast.Field
	re      *regexp.Regexp
}

// compiledRule holds the compiled form of a single template.
type compiledRule struct {
	name         string
	line         int
	segments     []segment
	literals     []int // prefilter ids of every literal segment
	endsWithRest bool
}

// Rules holds a compiled rule file ready for matching. It is immutable and
// safe for concurrent use.
type Rules struct {
	version   int
	rules     []*compiledRule
	all       []int
	names     []string
	byName    map[string][]int
	prefilter *prefilter
	regexes   int
}

// Version returns the version directive of the source rule file.
func (r *Rules) Version() int {
	return r.version
}

// Names returns the distinct rule names in file order.
func (r *Rules) Names() []string {
	return append([]string(nil), r.names...)
}

// Stats returns compilation statistics.
func (r *Rules) Stats() (templates, literals, regexes int) {
	if r.prefilter != nil {
		literals = len(r.prefilter.literals)
	}
	return len(r.rules), literals, r.regexes
}
