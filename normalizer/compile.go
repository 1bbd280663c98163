package normalizer

import (
	"errors"
	"fmt"
	"log/slog"

	regexp "github.com/wasilibs/go-re2"

	"github.com/sansecio/lognorm/ast"
	"github.com/sansecio/lognorm/parser"
)

// CompileOptions configures compilation behavior.
type CompileOptions struct {
	// Logger receives compile diagnostics. Nil discards them.
	Logger *slog.Logger

	// DisablePrefilter turns off the literal prefilter. Results are the
	// same either way; only the amount of per-line work differs.
	DisablePrefilter bool

	// SkipRules omits every template whose rule name is listed.
	SkipRules []string
}

// Compile compiles an AST RuleSet into Rules ready for matching.
func Compile(rs *ast.RuleSet) (*Rules, error) {
	return CompileWithOptions(rs, CompileOptions{})
}

// CompileString parses and compiles a complete rule file.
func CompileString(text string) (*Rules, error) {
	return CompileStringWithOptions(text, CompileOptions{})
}

// CompileStringWithOptions parses and compiles a complete rule file with the
// given options. Parser warnings are sent to the configured logger.
func CompileStringWithOptions(text string, opts CompileOptions) (*Rules, error) {
	p := parser.New()
	rs, err := p.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	logger := loggerOrDiscard(opts.Logger)
	for _, w := range p.Warnings() {
		logger.Warn("rule file warning", "warning", w)
	}
	return CompileWithOptions(rs, opts)
}

// CompileWithOptions compiles an AST RuleSet with the given options.
func CompileWithOptions(rs *ast.RuleSet, opts CompileOptions) (*Rules, error) {
	if rs == nil {
		return nil, errors.New("nil rule set")
	}
	logger := loggerOrDiscard(opts.Logger)

	skip := make(map[string]bool, len(opts.SkipRules))
	for _, name := range opts.SkipRules {
		skip[name] = true
	}

	rules := &Rules{
		version: rs.Version,
		rules:   make([]*compiledRule, 0, len(rs.Rules)),
		byName:  make(map[string][]int),
	}
	lits := newLiteralTable()
	var errs []error

	for _, r := range rs.Rules {
		if skip[r.Name] {
			continue
		}
		cr, err := compileRule(r, lits)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		idx := len(rules.rules)
		rules.rules = append(rules.rules, cr)
		rules.all = append(rules.all, idx)
		if _, ok := rules.byName[cr.name]; !ok {
			rules.names = append(rules.names, cr.name)
		}
		rules.byName[cr.name] = append(rules.byName[cr.name], idx)
		for _, s := range cr.segments {
			if s.re != nil {
				rules.regexes++
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if !opts.DisablePrefilter && len(lits.literals) > 0 {
		rules.prefilter = newPrefilter(lits.literals)
	}

	logger.Debug("compiled rules",
		"version", rules.version,
		"templates", len(rules.rules),
		"names", rules.names,
		"literals", len(lits.literals),
		"regexes", rules.regexes,
		"prefilter", rules.prefilter != nil,
	)

	return rules, nil
}

func compileRule(r *ast.Rule, lits *literalTable) (*compiledRule, error) {
	cr := &compiledRule{
		name:         r.Name,
		line:         r.Line,
		segments:     make([]segment, 0, len(r.Segments)),
		endsWithRest: r.EndsWithRest(),
	}

	for _, s := range r.Segments {
		switch s := s.(type) {
		case ast.Literal:
			cr.segments = append(cr.segments, segment{literal: s.Text})
			cr.literals = append(cr.literals, lits.id(s.Text))
		case ast.Field:
			f := s
			seg := segment{field: &f}
			if f.Kind == ast.KindRegex {
				re, err := regexp.Compile(`^(?:` + f.Expr + `)`)
				if err != nil {
					return nil, fmt.Errorf("rule %q (line %d): field %q: %w", r.Name, r.Line, f.Name, err)
				}
				seg.re = re
			}
			cr.segments = append(cr.segments, seg)
		default:
			return nil, fmt.Errorf("rule %q (line %d): unknown segment type %T", r.Name, r.Line, s)
		}
	}

	return cr, nil
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
