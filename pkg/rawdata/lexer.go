/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: lexer.go
Description: Lexical rules for IRrecvDumpV2 style rawData declarations. Any character
no other rule claims is an Other token, so pasted dump text around the declaration
still lexes.
*/

package rawdata

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// RawDataLexer tokenises C/C++ array declarations of timing values
var RawDataLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Whitespace", Pattern: `[\s]+`},

	// Hex literals only appear in trailing statements (e.g. "uint64_t data = 0xE0E040BF;")
	{Name: "Hex", Pattern: `0[xX][0-9A-Fa-f]+`},
	{Name: "Integer", Pattern: `-?[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\]{}=;,]`},
	{Name: "Other", Pattern: `[^\s]`},
})
