// Package ast defines the types for compiled normalization rule files.
package ast

import "fmt"

// RuleSet represents the contents of one rule file.
type RuleSet struct {
	Version int // value of the version= directive, 0 when absent
	Rules   []*Rule
}

// Names returns the distinct rule names in order of first appearance.
func (rs *RuleSet) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rs.Rules {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}

// Rule is a single rule=<name>:<template> declaration. Several rules may
// share a name; they are alternatives tried in file order.
type Rule struct {
	Name     string
	Line     int // 1-based line in the rule file
	Segments []Segment
}

// EndsWithRest reports whether the final segment is a rest field.
func (r *Rule) EndsWithRest() bool {
	if len(r.Segments) == 0 {
		return false
	}
	f, ok := r.Segments[len(r.Segments)-1].(Field)
	return ok && f.Kind == KindRest
}

// Segment is either a Literal or a Field.
type Segment interface {
	segment()
}

// Literal is template text that must appear verbatim.
type Literal struct {
	Text string
}

func (Literal) segment() {}

// Field consumes input according to its kind and binds it to Name.
type Field struct {
	Name  string
	Kind  FieldKind
	Delim byte   // char-to and char-sep only
	Expr  string // regex only
}

func (Field) segment() {}

// Discard reports whether the field is matched without being bound.
func (f Field) Discard() bool {
	return f.Name == "-"
}

// FieldKind is the extraction rule of a field.
type FieldKind int

const (
	KindWord FieldKind = iota
	KindNumber
	KindFloat
	KindCharTo
	KindRest
	KindJSON
	KindCharSep
	KindIPv4
	KindRegex
)

var kindNames = [...]string{
	KindWord:    "word",
	KindNumber:  "number",
	KindFloat:   "float",
	KindCharTo:  "char-to",
	KindRest:    "rest",
	KindJSON:    "json",
	KindCharSep: "char-sep",
	KindIPv4:    "ipv4",
	KindRegex:   "regex",
}

func (k FieldKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// LookupKind returns the kind named s, without any parameter suffix.
func LookupKind(s string) (FieldKind, bool) {
	for k, name := range kindNames {
		if name == s {
			return FieldKind(k), true
		}
	}
	return 0, false
}

// HasDelim reports whether the kind takes a single delimiter character.
func (k FieldKind) HasDelim() bool {
	return k == KindCharTo || k == KindCharSep
}
