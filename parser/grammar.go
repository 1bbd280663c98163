package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Grammar structs for the participle template parser.
//
// A template is a flat run of literal text and %name:kind% field tokens.
// The delimiter form of char-to/char-sep is listed first so that the
// delimiter itself may be any character, including % or ".

var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Field", Pattern: `%[^%:]*:char-(?:to|sep):.%|%[^%]*%`},
	{Name: "Literal", Pattern: `[^%]+`},
})

type template struct {
	Tokens []*templateToken `parser:"@@*"`
}

type templateToken struct {
	Field   *string `parser:"( @Field"`
	Literal *string `parser:"| @Literal )"`
}

var templateParser = participle.MustBuild[template](
	participle.Lexer(templateLexer),
)
