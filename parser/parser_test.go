package parser

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sansecio/lognorm/ast"
)

func mustParse(t *testing.T, input string) *ast.RuleSet {
	t.Helper()
	p := New()
	rs, err := p.Parse(input)
	require.NoError(t, err)
	return rs
}

func readRules(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../testdata/rules.rb")
	require.NoError(t, err)
	return string(b)
}

func TestParseMinimalRule(t *testing.T) {
	rs := mustParse(t, `rule=greeting:hello %who:word%`)

	require.Len(t, rs.Rules, 1)
	r := rs.Rules[0]
	assert.Equal(t, "greeting", r.Name)
	assert.Equal(t, 1, r.Line)
	assert.Equal(t, []ast.Segment{
		ast.Literal{Text: "hello "},
		ast.Field{Name: "who", Kind: ast.KindWord},
	}, r.Segments)
}

func TestParseSampleRuleFile(t *testing.T) {
	rs := mustParse(t, readRules(t))

	assert.Equal(t, 2, rs.Version)
	require.Len(t, rs.Rules, 8)
	assert.Equal(t, []string{"http", "json", "log4j"}, rs.Names())

	lines := make([]int, len(rs.Rules))
	for i, r := range rs.Rules {
		lines[i] = r.Line
	}
	assert.Equal(t, []int{3, 4, 5, 6, 9, 10, 12, 13}, lines)
}

func TestParseCombinedLogTemplate(t *testing.T) {
	rs := mustParse(t, readRules(t))

	want := []ast.Segment{
		ast.Field{Name: "remote_addr", Kind: ast.KindWord},
		ast.Literal{Text: " "},
		ast.Field{Name: "ident", Kind: ast.KindWord},
		ast.Literal{Text: " "},
		ast.Field{Name: "auth", Kind: ast.KindWord},
		ast.Literal{Text: " ["},
		ast.Field{Name: "timestamp", Kind: ast.KindCharTo, Delim: ']'},
		ast.Literal{Text: `] "`},
		ast.Field{Name: "method", Kind: ast.KindWord},
		ast.Literal{Text: " "},
		ast.Field{Name: "request", Kind: ast.KindWord},
		ast.Literal{Text: " HTTP/"},
		ast.Field{Name: "httpversion", Kind: ast.KindFloat},
		ast.Literal{Text: `" `},
		ast.Field{Name: "status", Kind: ast.KindNumber},
		ast.Literal{Text: " "},
		ast.Field{Name: "bytes_sent", Kind: ast.KindNumber},
		ast.Literal{Text: ` "`},
		ast.Field{Name: "referrer", Kind: ast.KindCharTo, Delim: '"'},
		ast.Literal{Text: `" "`},
		ast.Field{Name: "agent", Kind: ast.KindCharTo, Delim: '"'},
		ast.Literal{Text: `"`},
	}

	assert.Equal(t, want, rs.Rules[1].Segments)
	assert.Equal(t, append(want, ast.Field{Name: "blob", Kind: ast.KindRest}), rs.Rules[0].Segments)
	assert.True(t, rs.Rules[0].EndsWithRest())
	assert.False(t, rs.Rules[1].EndsWithRest())
}

func TestParseLeadingSpaceVariantsStayDistinct(t *testing.T) {
	rs := mustParse(t, readRules(t))

	json, jsonSpaced := rs.Rules[4], rs.Rules[5]
	assert.Equal(t, []ast.Segment{ast.Field{Name: "body", Kind: ast.KindJSON}}, json.Segments)
	assert.Equal(t, []ast.Segment{ast.Literal{Text: " "}, ast.Field{Name: "body", Kind: ast.KindJSON}}, jsonSpaced.Segments)

	log4jSpaced, log4j := rs.Rules[6], rs.Rules[7]
	assert.Equal(t, ast.Literal{Text: " ["}, log4jSpaced.Segments[0])
	assert.Equal(t, ast.Literal{Text: "["}, log4j.Segments[0])
}

func TestParseIsDeterministic(t *testing.T) {
	input := readRules(t)
	first := mustParse(t, input)
	second := mustParse(t, input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing the same input twice differed:\n%+v\n%+v", first, second)
	}
}

func TestParseFieldKinds(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  ast.Field
	}{
		{"word", "%f:word%", ast.Field{Name: "f", Kind: ast.KindWord}},
		{"number", "%f:number%", ast.Field{Name: "f", Kind: ast.KindNumber}},
		{"float", "%f:float%", ast.Field{Name: "f", Kind: ast.KindFloat}},
		{"rest", "%f:rest%", ast.Field{Name: "f", Kind: ast.KindRest}},
		{"json", "%f:json%", ast.Field{Name: "f", Kind: ast.KindJSON}},
		{"ipv4", "%f:ipv4%", ast.Field{Name: "f", Kind: ast.KindIPv4}},
		{"char-to bracket", "%f:char-to:]%", ast.Field{Name: "f", Kind: ast.KindCharTo, Delim: ']'}},
		{"char-to quote", `%f:char-to:"%`, ast.Field{Name: "f", Kind: ast.KindCharTo, Delim: '"'}},
		{"char-to percent", "%f:char-to:%%", ast.Field{Name: "f", Kind: ast.KindCharTo, Delim: '%'}},
		{"char-to colon", "%f:char-to::%", ast.Field{Name: "f", Kind: ast.KindCharTo, Delim: ':'}},
		{"char-to space", "%f:char-to: %", ast.Field{Name: "f", Kind: ast.KindCharTo, Delim: ' '}},
		{"char-sep", "%f:char-sep:,%", ast.Field{Name: "f", Kind: ast.KindCharSep, Delim: ','}},
		{"regex", "%f:regex:[a-z]+:[0-9]+%", ast.Field{Name: "f", Kind: ast.KindRegex, Expr: "[a-z]+:[0-9]+"}},
		{"discard", "%-:word%", ast.Field{Name: "-", Kind: ast.KindWord}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustParse(t, "rule=t:"+tt.token)
			require.Len(t, rs.Rules[0].Segments, 1)
			assert.Equal(t, tt.want, rs.Rules[0].Segments[0])
		})
	}
}

func TestParseDelimiterFollowedByLiteral(t *testing.T) {
	rs := mustParse(t, `rule=t:"%a:char-to:"%" "%b:char-to:"%"`)

	assert.Equal(t, []ast.Segment{
		ast.Literal{Text: `"`},
		ast.Field{Name: "a", Kind: ast.KindCharTo, Delim: '"'},
		ast.Literal{Text: `" "`},
		ast.Field{Name: "b", Kind: ast.KindCharTo, Delim: '"'},
		ast.Literal{Text: `"`},
	}, rs.Rules[0].Segments)
}

func TestParseEmptyTemplate(t *testing.T) {
	rs := mustParse(t, "rule=empty:")
	require.Len(t, rs.Rules, 1)
	assert.Empty(t, rs.Rules[0].Segments)
}

func TestParseSkipsBlankCommentAndUnknownLines(t *testing.T) {
	p := New()
	rs, err := p.Parse("# comment\n\n   \nprefix=foo\nrule=a:%x:word%\r\nannotate=a:+tag\n")
	require.NoError(t, err)

	require.Len(t, rs.Rules, 1)
	assert.Equal(t, 5, rs.Rules[0].Line)
	assert.Equal(t, []ast.Segment{ast.Field{Name: "x", Kind: ast.KindWord}}, rs.Rules[0].Segments)
	assert.Equal(t, []string{
		"line 4: skipping unrecognized line",
		"line 6: skipping unrecognized line",
	}, p.Warnings())
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		version  int
		warnings int
	}{
		{"absent", "rule=a:x", 0, 0},
		{"v1", "version=1\nrule=a:x", 1, 0},
		{"v2", "version=2\nrule=a:x", 2, 0},
		{"unknown version still compiles", "version=9\nrule=a:x", 9, 1},
		{"not a number", "version=two\nrule=a:x", 0, 1},
		{"after first rule", "rule=a:x\nversion=2", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			rs, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.version, rs.Version)
			assert.Len(t, p.Warnings(), tt.warnings)
			assert.Len(t, rs.Rules, 1)
		})
	}
}

func TestParseWarningsResetBetweenParses(t *testing.T) {
	p := New()
	_, err := p.Parse("junk")
	require.NoError(t, err)
	require.Len(t, p.Warnings(), 1)

	_, err = p.Parse("rule=a:x")
	require.NoError(t, err)
	assert.Empty(t, p.Warnings())
}

func TestParseMalformedRule(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"no colon", "rule=http", 1},
		{"empty name", "version=2\nrule=:%x:word%", 2},
		{"unterminated field", "rule=a:abc %x:word", 1},
		{"stray percent", "rule=a:100% done", 1},
		{"field without kind", "rule=a:%x%", 1},
		{"field without name", "rule=a:%:word%", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(tt.input)
			require.Error(t, err)

			var malformed *MalformedRuleError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.line, malformed.Line)
		})
	}
}

func TestParseUnknownFieldKind(t *testing.T) {
	tests := []struct {
		name  string
		token string
		kind  string
	}{
		{"unknown kind", "%x:ipv6%", "ipv6"},
		{"char-to without delimiter", "%x:char-to%", "char-to"},
		{"char-to with two characters", "%x:char-to:ab%", "char-to:ab"},
		{"char-sep without delimiter", "%x:char-sep:%", "char-sep:"},
		{"regex without expression", "%x:regex%", "regex"},
		{"word with parameter", "%x:word:foo%", "word:foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse("rule=myrule:" + tt.token)
			require.Error(t, err)

			var kindErr *UnknownFieldKindError
			require.ErrorAs(t, err, &kindErr)
			assert.Equal(t, "myrule", kindErr.RuleName)
			assert.Equal(t, "x", kindErr.FieldName)
			assert.Equal(t, tt.kind, kindErr.Kind)
			assert.Equal(t, 1, kindErr.Line)
		})
	}
}

func TestParseRejectsWholeFile(t *testing.T) {
	input := "rule=good:%x:word%\nrule=bad\nrule=worse:%y:nope%\nrule=fine:%z:rest%"
	rs, err := New().Parse(input)
	require.Error(t, err)
	assert.Nil(t, rs)

	var malformed *MalformedRuleError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)

	var kindErr *UnknownFieldKindError
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, 3, kindErr.Line)
}
