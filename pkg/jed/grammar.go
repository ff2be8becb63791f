package jed

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// fuseHeaderLexer tokenizes the first line of an L record.
var fuseHeaderLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Tag", Pattern: `L`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Terminator", Pattern: `\*`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// fuseHeader is the first line of an L record:
//
//	L<offset>                multi-line form, bits follow on the next lines
//	L<offset> <bits>[*]      inline form
//
// Both fields are captured as text: offsets carry leading zeros and must not
// be read as octal.
type fuseHeader struct {
	Offset string `parser:"Tag @Number"`
	Bits   string `parser:"( @Number Terminator? )?"`
}

var fuseHeaderParser = participle.MustBuild[fuseHeader](
	participle.Lexer(fuseHeaderLexer),
	participle.Elide("Whitespace"),
)
