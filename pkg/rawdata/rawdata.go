/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rawdata.go
Description: Parser for raw timing captures. Accepts a full rawData declaration as
printed by IRrecvDumpV2, a braced list or a bare comma separated list, and returns
the timing values in microseconds.
*/

package rawdata

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/kleascm/irprobe/pkg/inference"
)

// ErrMalformedInput is returned for anything that is not a list of non-negative integers
var ErrMalformedInput = fmt.Errorf("rawdata: %w", inference.ErrMalformedInput)

// source is the grammar root. A braced list may be preceded by any text that holds no
// brace (a declaration, or a pasted IRrecvDumpV2 block) and followed by anything.
type source struct {
	Braced *braced   `  @@`
	Bare   *bareList `| @@`
}

type braced struct {
	Lead   []*word    `@@*`
	Values *valueList `@@`
	Rest   []string   `( @( Ident | Integer | Hex | Punct | Other ) )*`
}

// word is one token ahead of the braced list
type word struct {
	Pos   lexer.Position
	Ident string `(  @Ident`
	Text  string ` | @( Integer | Hex | Other | "[" | "]" | "=" | ";" | "," ) )`
}

type valueList struct {
	Values []int `"{" ( @Integer ( "," @Integer )* ","? )? "}"`
}

type bareList struct {
	Values []int `@Integer ( "," @Integer )* ","?`
}

// Capture is one parsed timing capture
type Capture struct {
	Name           string `json:"name,omitempty" yaml:"name,omitempty"` // Variable name, e.g. "rawData"
	Type           string `json:"type,omitempty" yaml:"type,omitempty"` // Declared element type, e.g. "uint16_t"
	DeclaredLength int    `json:"declared_length,omitempty" yaml:"declared_length,omitempty"`
	Timings        []int  `json:"timings" yaml:"timings"`
}

// LengthMismatch reports a declared array length that disagrees with the value count
func (c *Capture) LengthMismatch() bool {
	return c.DeclaredLength > 0 && c.DeclaredLength != len(c.Timings)
}

// Parser parses raw timing captures
type Parser struct {
	parser *participle.Parser[source]
}

// NewParser creates a new rawData parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[source](
		participle.Lexer(RawDataLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(participle.MaxLookahead),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

var defaultParser = mustParser()

func mustParser() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

// Parse parses a capture from a string
func (p *Parser) Parse(input string) (*Capture, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: no input", ErrMalformedInput)
	}
	src, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return build(src)
}

// ParseReader parses a capture from a reader
func (p *Parser) ParseReader(r io.Reader) (*Capture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return p.Parse(string(data))
}

// ParseFile parses a capture from a file path
func (p *Parser) ParseFile(filename string) (*Capture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file)
}

// Parse parses a capture with the default parser
func Parse(input string) (*Capture, error) {
	return defaultParser.Parse(input)
}

// ParseReader parses a capture from r with the default parser
func ParseReader(r io.Reader) (*Capture, error) {
	return defaultParser.ParseReader(r)
}

// ParseFile parses a capture from filename with the default parser
func ParseFile(filename string) (*Capture, error) {
	return defaultParser.ParseFile(filename)
}

func build(src *source) (*Capture, error) {
	c := &Capture{}
	switch {
	case src.Braced != nil:
		if err := c.declare(src.Braced.Lead); err != nil {
			return nil, err
		}
		c.Timings = src.Braced.Values.Values
	case src.Bare != nil:
		c.Timings = src.Bare.Values
	default:
		return nil, fmt.Errorf("%w: empty parse tree", ErrMalformedInput)
	}

	if len(c.Timings) == 0 {
		return nil, fmt.Errorf("%w: empty value list", ErrMalformedInput)
	}
	for i, v := range c.Timings {
		if v < 0 {
			return nil, fmt.Errorf("%w: negative value %d at position %d", ErrMalformedInput, v, i+1)
		}
	}
	return c, nil
}

// declare picks the variable name, type and array length out of the text ahead of
// the list. The name is the identifier before the last "[" or, without one, before
// the last "="; the type is the identifiers before the name on the same line.
func (c *Capture) declare(lead []*word) error {
	name := -1
	for i := len(lead) - 1; i > 0 && name < 0; i-- {
		if lead[i].Text == "[" && lead[i-1].Ident != "" {
			name = i - 1
			if err := c.arrayLength(lead[i+1:]); err != nil {
				return err
			}
		}
	}
	for i := len(lead) - 1; i > 0 && name < 0; i-- {
		if lead[i].Text == "=" && lead[i-1].Ident != "" {
			name = i - 1
		}
	}
	if name < 0 {
		return nil
	}

	c.Name = lead[name].Ident
	first := name
	for first > 0 && lead[first-1].Ident != "" && lead[first-1].Pos.Line == lead[name].Pos.Line {
		first--
	}
	types := make([]string, 0, name-first)
	for _, w := range lead[first:name] {
		types = append(types, w.Ident)
	}
	c.Type = strings.Join(types, " ")
	return nil
}

// arrayLength reads "N ]" following a "["; "[]" leaves the length unset
func (c *Capture) arrayLength(after []*word) error {
	if len(after) < 2 || after[1].Text != "]" {
		return nil
	}
	n, err := strconv.Atoi(after[0].Text)
	if err != nil {
		return nil
	}
	if n < 0 {
		return fmt.Errorf("%w: negative array length %d", ErrMalformedInput, n)
	}
	c.DeclaredLength = n
	return nil
}
