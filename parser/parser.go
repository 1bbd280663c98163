// Package parser reads normalization rule files into an ast.RuleSet.
//
// A rule file is line oriented:
//
//	version=2
//	rule=<name>:<template>
//
// Templates mix literal text with %name:kind% field tokens.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/sansecio/lognorm/ast"
)

const (
	rulePrefix    = "rule="
	versionPrefix = "version="
)

// knownVersions lists the rule file versions this parser was written against.
// Other versions are accepted with a warning.
var knownVersions = map[int]bool{1: true, 2: true}

// Parser parses normalization rule files.
type Parser struct {
	parser   *participle.Parser[template]
	warnings []string
}

// New creates a new rule file parser.
func New() *Parser {
	return &Parser{parser: templateParser}
}

// Parse parses a complete rule file. Every line error is collected and the
// whole file is rejected if any occurred.
func (p *Parser) Parse(input string) (*ast.RuleSet, error) {
	p.warnings = nil
	rs := &ast.RuleSet{}
	var errs []error

	for i, line := range strings.Split(input, "\n") {
		lineNo := i + 1
		line = strings.TrimSuffix(line, "\r")

		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, versionPrefix):
			p.parseVersion(rs, line, lineNo)
		case strings.HasPrefix(line, rulePrefix):
			rule, err := p.parseRule(line, lineNo)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			rs.Rules = append(rs.Rules, rule)
		default:
			p.warnf("line %d: skipping unrecognized line", lineNo)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rs, nil
}

// Warnings returns any warnings generated during the last parse.
func (p *Parser) Warnings() []string {
	return p.warnings
}

func (p *Parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *Parser) parseVersion(rs *ast.RuleSet, line string, lineNo int) {
	if len(rs.Rules) > 0 {
		p.warnf("line %d: version directive after first rule ignored", lineNo)
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(line[len(versionPrefix):]))
	if err != nil {
		p.warnf("line %d: invalid version %q", lineNo, line[len(versionPrefix):])
		return
	}
	if !knownVersions[v] {
		p.warnf("line %d: unknown rule file version %d", lineNo, v)
	}
	rs.Version = v
}

func (p *Parser) parseRule(line string, lineNo int) (*ast.Rule, error) {
	name, tmpl, ok := strings.Cut(line[len(rulePrefix):], ":")
	if !ok || name == "" {
		return nil, &MalformedRuleError{Line: lineNo, Text: line}
	}

	rule := &ast.Rule{Name: name, Line: lineNo}
	if tmpl == "" {
		return rule, nil
	}

	t, err := p.parser.ParseString("", tmpl)
	if err != nil {
		return nil, &MalformedRuleError{Line: lineNo, Text: line, Err: err}
	}

	rule.Segments = make([]ast.Segment, 0, len(t.Tokens))
	for _, tok := range t.Tokens {
		switch {
		case tok.Literal != nil:
			rule.Segments = append(rule.Segments, ast.Literal{Text: *tok.Literal})
		case tok.Field != nil:
			f, err := convertField(*tok.Field)
			if err != nil {
				var kindErr *UnknownFieldKindError
				if errors.As(err, &kindErr) {
					kindErr.Line = lineNo
					kindErr.RuleName = name
					return nil, kindErr
				}
				return nil, &MalformedRuleError{Line: lineNo, Text: line, Err: err}
			}
			rule.Segments = append(rule.Segments, f)
		}
	}

	return rule, nil
}

// convertField turns a %name:kind% token into a Field. The kind may carry a
// parameter after a second colon: the delimiter for char-to and char-sep,
// or the expression for regex.
func convertField(tok string) (ast.Field, error) {
	inner := tok[1 : len(tok)-1]
	name, spec, ok := strings.Cut(inner, ":")
	if !ok || name == "" {
		return ast.Field{}, fmt.Errorf("field %q: expected %%name:kind%%", tok)
	}

	kindName, param, hasParam := strings.Cut(spec, ":")
	kind, ok := ast.LookupKind(kindName)
	if !ok {
		return ast.Field{}, &UnknownFieldKindError{FieldName: name, Kind: spec}
	}

	f := ast.Field{Name: name, Kind: kind}
	switch {
	case kind.HasDelim():
		if !hasParam || len(param) != 1 {
			return ast.Field{}, &UnknownFieldKindError{FieldName: name, Kind: spec}
		}
		f.Delim = param[0]
	case kind == ast.KindRegex:
		if !hasParam || param == "" {
			return ast.Field{}, &UnknownFieldKindError{FieldName: name, Kind: spec}
		}
		f.Expr = param
	case hasParam:
		return ast.Field{}, &UnknownFieldKindError{FieldName: name, Kind: spec}
	}
	return f, nil
}
