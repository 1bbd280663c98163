package parser

import "fmt"

// MalformedRuleError is returned for a rule= line that lacks the
// name:template structure or whose template cannot be tokenized.
type MalformedRuleError struct {
	Line int    // 1-based line in the rule file
	Text string // the offending line
	Err  error  // underlying tokenizer error, if any
}

func (e *MalformedRuleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: malformed rule %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("line %d: malformed rule %q", e.Line, e.Text)
}

func (e *MalformedRuleError) Unwrap() error {
	return e.Err
}

// UnknownFieldKindError is returned when a template references a field
// kind that is not supported, or a supported kind with a bad parameter.
type UnknownFieldKindError struct {
	Line      int
	RuleName  string
	FieldName string
	Kind      string
}

func (e *UnknownFieldKindError) Error() string {
	return fmt.Sprintf("line %d: rule %q: field %q: unknown field kind %q", e.Line, e.RuleName, e.FieldName, e.Kind)
}
