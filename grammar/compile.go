// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/parsec-go/parsec/chars"
	"github.com/parsec-go/parsec/internal/levenshtein"
	"github.com/parsec-go/parsec/parser"
)

// CompileErr indicates a grammar expression could not be compiled.
const CompileErr = "parsec_compile_error"

// Compile compiles a standalone grammar expression. Only the built-in
// classes are in scope; use Rules to compile against named definitions.
func Compile(src string) (parser.Parser, error) {
	return NewRules().Compile(src)
}

// MustCompile is like Compile but panics if src does not compile.
func MustCompile(src string) parser.Parser {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// compiler is a single-pass recursive descent compiler over one grammar
// expression. Positions in errors are offset by the base location so rule
// files report the row and column of the original source.
type compiler struct {
	src     string
	pos     int
	rules   *Rules
	file    string
	baseRow int
	baseCol int
}

// identParser scans the names the grammar itself uses. The grammar is the
// engine's own first consumer.
var identParser = chars.Alpha().Or(parser.Char('_')).
	Then(parser.Many(chars.Alnum().Or(parser.Char('_'))))

func (c *compiler) compile() (parser.Parser, *parser.Error) {
	p, err := c.parseExpr()
	if err != nil {
		return p, err
	}
	c.skipSpace()
	if !c.eof() {
		return p, c.errorf(c.pos, "unexpected character %s", quote(c.src[c.pos]))
	}
	return p, nil
}

func (c *compiler) parseExpr() (parser.Parser, *parser.Error) {
	p, err := c.parseSeq()
	if err != nil {
		return p, err
	}
	for {
		c.skipSpace()
		if !c.consumeByte('|') {
			return p, nil
		}
		q, err := c.parseSeq()
		if err != nil {
			return q, err
		}
		p = p.Or(q)
	}
}

func (c *compiler) parseSeq() (parser.Parser, *parser.Error) {
	p, err := c.parseRep()
	if err != nil {
		return p, err
	}
	for {
		c.skipSpace()
		var discard bool
		switch {
		case c.consumeOp(">>"):
			discard = false
		case c.consumeOp("<<"):
			discard = true
		default:
			return p, nil
		}
		q, err := c.parseRep()
		if err != nil {
			return q, err
		}
		if discard {
			p = p.SkipThen(q)
		} else {
			p = p.Then(q)
		}
	}
}

func (c *compiler) parseRep() (parser.Parser, *parser.Error) {
	p, err := c.parseAtom()
	if err != nil {
		return p, err
	}
	for {
		c.skipSpace()
		switch {
		case c.consumeByte('*'):
			p = parser.Many(p)
		case c.consumeByte('+'):
			p = parser.Many1(p)
		default:
			return p, nil
		}
	}
}

func (c *compiler) parseAtom() (parser.Parser, *parser.Error) {
	c.skipSpace()
	if c.eof() {
		return parser.Parser{}, c.errorf(c.pos, "unexpected end of grammar")
	}
	start := c.pos
	switch ch := c.src[c.pos]; {
	case ch == '(':
		c.pos++
		p, err := c.parseExpr()
		if err != nil {
			return p, err
		}
		c.skipSpace()
		if !c.consumeByte(')') {
			return p, c.errorf(c.pos, "expected ')' to close group")
		}
		return p, nil
	case ch == '\'':
		return c.parseCharLit()
	case ch == '"':
		return c.parseStrLit()
	case ch == '[':
		return c.parseClass()
	case isIdentStart(ch):
		name := c.scanIdent()
		c.skipSpace()
		if callForms[name] {
			if c.peek() == '(' {
				return c.parseCall(name, start)
			}
			return parser.Parser{}, c.errorf(start, "expected '(' after %v", name)
		}
		return c.resolve(name, start)
	default:
		return parser.Parser{}, c.errorf(start, "unexpected character %s", quote(ch))
	}
}

func (c *compiler) parseCall(name string, start int) (parser.Parser, *parser.Error) {
	c.pos++ // opening parenthesis
	var args []parser.Parser
	c.skipSpace()
	if !c.consumeByte(')') {
		for {
			p, err := c.parseExpr()
			if err != nil {
				return p, err
			}
			args = append(args, p)
			c.skipSpace()
			if c.consumeByte(',') {
				continue
			}
			if c.consumeByte(')') {
				break
			}
			return parser.Parser{}, c.errorf(c.pos, "expected ',' or ')' in %v call", name)
		}
	}

	arity := map[string]int{"many": 1, "many1": 1, "between": 3, "sepby": 2}[name]
	if len(args) != arity {
		return parser.Parser{}, c.errorf(start, "%v expects %d argument(s) but got %d", name, arity, len(args))
	}

	switch name {
	case "many":
		return parser.Many(args[0]), nil
	case "many1":
		return parser.Many1(args[0]), nil
	case "between":
		return parser.Between(args[0], args[1], args[2]), nil
	default:
		return parser.SepBy(args[0], args[1]), nil
	}
}

func (c *compiler) parseCharLit() (parser.Parser, *parser.Error) {
	start := c.pos
	c.pos++ // opening quote
	if c.eof() {
		return parser.Parser{}, c.errorf(start, "unterminated character literal")
	}
	ch := c.src[c.pos]
	if ch == '\'' {
		return parser.Parser{}, c.errorf(start, "empty character literal")
	}
	if ch == '\\' {
		c.pos++
		if c.eof() {
			return parser.Parser{}, c.errorf(start, "unterminated character literal")
		}
		e, ok := unescape(c.src[c.pos])
		if !ok {
			return parser.Parser{}, c.errorf(c.pos-1, "invalid escape \\%c", c.src[c.pos])
		}
		ch = e
	}
	c.pos++
	if !c.consumeByte('\'') {
		return parser.Parser{}, c.errorf(start, "unterminated character literal")
	}
	return parser.Char(ch), nil
}

func (c *compiler) parseStrLit() (parser.Parser, *parser.Error) {
	start := c.pos
	c.pos++ // opening quote
	var lit []byte
	for {
		if c.eof() {
			return parser.Parser{}, c.errorf(start, "unterminated string literal")
		}
		ch := c.src[c.pos]
		if ch == '"' {
			c.pos++
			return parser.String(string(lit)), nil
		}
		if ch == '\\' {
			c.pos++
			if c.eof() {
				return parser.Parser{}, c.errorf(start, "unterminated string literal")
			}
			e, ok := unescape(c.src[c.pos])
			if !ok {
				return parser.Parser{}, c.errorf(c.pos-1, "invalid escape \\%c", c.src[c.pos])
			}
			ch = e
		}
		lit = append(lit, ch)
		c.pos++
	}
}

func (c *compiler) parseClass() (parser.Parser, *parser.Error) {
	start := c.pos
	c.pos++ // opening bracket
	negate := false
	if c.peek() == '^' {
		negate = true
		c.pos++
	}
	var set []byte
	for {
		if c.eof() {
			return parser.Parser{}, c.errorf(start, "unterminated character class")
		}
		ch := c.src[c.pos]
		if ch == ']' {
			c.pos++
			break
		}
		if ch == '\\' {
			c.pos++
			if c.eof() {
				return parser.Parser{}, c.errorf(start, "unterminated character class")
			}
			e, ok := unescape(c.src[c.pos])
			if !ok {
				return parser.Parser{}, c.errorf(c.pos-1, "invalid escape \\%c", c.src[c.pos])
			}
			ch = e
		}
		set = append(set, ch)
		c.pos++
	}
	if len(set) == 0 && !negate {
		return parser.Parser{}, c.errorf(start, "empty character class")
	}
	if negate {
		return parser.NoneOf(string(set)), nil
	}
	return parser.OneOf(string(set)), nil
}

func (c *compiler) resolve(name string, pos int) (parser.Parser, *parser.Error) {
	if c.rules != nil {
		if p, ok := c.rules.Get(name); ok {
			return p, nil
		}
	}
	if fn, ok := builtins[name]; ok {
		return parser.Named(name, fn()), nil
	}
	return parser.Parser{}, c.errorf(pos, "%s", c.undefinedMsg(name))
}

func (c *compiler) undefinedMsg(name string) string {
	var candidates []string
	if c.rules != nil {
		candidates = c.rules.Names()
	}
	candidates = append(candidates, Builtins()...)
	for form := range callForms {
		candidates = append(candidates, form)
	}

	proposals := levenshtein.ClosestStrings(3, name, slices.Values(candidates))
	switch len(proposals) {
	case 0:
		return fmt.Sprintf("%v undefined", name)
	case 1:
		return fmt.Sprintf("%v undefined, did you mean %v?", name, proposals[0])
	default:
		return fmt.Sprintf("%v undefined, did you mean any of %v?", name, proposals)
	}
}

func (c *compiler) scanIdent() string {
	out, _, err := identParser.Parse(c.src[c.pos:])
	if err != nil {
		// parseAtom only dispatches here on an identifier start byte.
		panic(err)
	}
	c.pos += len(out)
	return out
}

func (c *compiler) skipSpace() {
	for c.pos < len(c.src) {
		switch c.src[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *compiler) eof() bool {
	return c.pos >= len(c.src)
}

func (c *compiler) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *compiler) consumeByte(ch byte) bool {
	if !c.eof() && c.src[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *compiler) consumeOp(op string) bool {
	if strings.HasPrefix(c.src[c.pos:], op) {
		c.pos += len(op)
		return true
	}
	return false
}

// errorf builds a compile error located at pos within the expression,
// shifted by the compiler's base location.
func (c *compiler) errorf(pos int, f string, a ...any) *parser.Error {
	row, col := 1, 1
	for i := 0; i < pos && i < len(c.src); i++ {
		if c.src[i] == '\n' {
			row++
			col = 1
		} else {
			col++
		}
	}
	if row == 1 {
		col += c.baseCol - 1
	}
	row += c.baseRow - 1

	end := min(pos+1, len(c.src))
	frag := ""
	if pos < len(c.src) {
		frag = c.src[pos:end]
	}
	loc := parser.NewLocation([]byte(frag), c.file, row, col)
	loc.Offset = pos
	return parser.NewError(CompileErr, loc, f, a...)
}

func unescape(ch byte) (byte, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '\\', '\'', '"', ']', '^':
		return ch, true
	}
	return 0, false
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func quote(ch byte) string {
	return strconv.QuoteRune(rune(ch))
}
