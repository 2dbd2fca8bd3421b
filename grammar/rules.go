// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/parsec-go/parsec/parser"
)

// Rules is an ordered collection of named parsers. Expressions compiled
// against it may reference any rule defined before them. Rules is not safe
// for concurrent modification; the parsers it hands out are.
type Rules struct {
	names []string
	defs  map[string]definition
}

type definition struct {
	p   parser.Parser
	src string
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{defs: map[string]definition{}}
}

// ParseRules parses rule definitions, one per line in the form
// "name = expression". Blank lines and lines starting with # are skipped.
// Every malformed line contributes one error to the result.
func ParseRules(filename, src string) (*Rules, error) {
	r := NewRules()
	if err := r.ParseFile(filename, src); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRules reads and parses the given rule files into one rule set.
// Later files may reference rules defined in earlier ones.
func LoadRules(paths ...string) (*Rules, error) {
	r := NewRules()
	for _, path := range paths {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := r.ParseFile(path, string(bs)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseFile parses rule definitions from one file into r on top of the
// rules already defined.
func (r *Rules) ParseFile(filename, src string) error {
	var errs parser.Errors

	for i, line := range strings.Split(src, "\n") {
		row := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		name, expr, found := strings.Cut(line, "=")
		if !found {
			errs = append(errs, lineError(filename, line, row, "expected name = expression"))
			continue
		}
		name = strings.TrimSpace(name)
		switch {
		case !validIdent(name):
			errs = append(errs, lineError(filename, line, row, "invalid rule name %q", name))
			continue
		case callForms[name]:
			errs = append(errs, lineError(filename, line, row, "%v is a reserved name", name))
			continue
		}
		if _, ok := r.defs[name]; ok {
			errs = append(errs, lineError(filename, line, row, "rule %v redefined", name))
			continue
		}

		col := strings.IndexByte(line, '=') + 2
		p, err := r.compileAt(expr, filename, row, col)
		if err != nil {
			if perr, ok := err.(*parser.Error); ok {
				errs = append(errs, perr)
			} else {
				errs = append(errs, lineError(filename, line, row, "%v", err))
			}
			continue
		}
		r.add(name, parser.Named(name, p), strings.TrimSpace(expr))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Define compiles src against the current definitions and binds it to
// name, replacing any previous binding. Parsers already compiled against
// the previous binding keep it.
func (r *Rules) Define(name, src string) (parser.Parser, error) {
	if !validIdent(name) {
		return parser.Parser{}, fmt.Errorf("invalid rule name %q", name)
	}
	if callForms[name] {
		return parser.Parser{}, fmt.Errorf("%v is a reserved name", name)
	}
	p, err := r.Compile(src)
	if err != nil {
		return parser.Parser{}, err
	}
	named := parser.Named(name, p)
	r.add(name, named, strings.TrimSpace(src))
	return named, nil
}

// Compile compiles a grammar expression that may reference the rules
// defined so far.
func (r *Rules) Compile(src string) (parser.Parser, error) {
	return r.compileAt(src, "", 1, 1)
}

// CompilePrefix compiles the leading grammar expression of src and returns
// the unconsumed remainder. Rules defined so far are in scope.
func (r *Rules) CompilePrefix(src string) (parser.Parser, string, error) {
	c := &compiler{src: src, rules: r, baseRow: 1, baseCol: 1}
	p, err := c.parseExpr()
	if err != nil {
		return parser.Parser{}, src, err
	}
	return p, src[c.pos:], nil
}

func (r *Rules) compileAt(src, file string, row, col int) (parser.Parser, error) {
	c := &compiler{src: src, rules: r, file: file, baseRow: row, baseCol: col}
	p, err := c.compile()
	if err != nil {
		return parser.Parser{}, err
	}
	return p, nil
}

// Get returns the parser bound to name.
func (r *Rules) Get(name string) (parser.Parser, bool) {
	d, ok := r.defs[name]
	return d.p, ok
}

// Source returns the expression text name was defined with.
func (r *Rules) Source(name string) (string, bool) {
	d, ok := r.defs[name]
	return d.src, ok
}

// Unset removes the binding for name and reports whether it existed.
// Parsers already compiled against the binding are unaffected.
func (r *Rules) Unset(name string) bool {
	if _, ok := r.defs[name]; !ok {
		return false
	}
	delete(r.defs, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the rule names in definition order.
func (r *Rules) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len returns the number of rules defined.
func (r *Rules) Len() int {
	return len(r.names)
}

func (r *Rules) add(name string, p parser.Parser, src string) {
	if _, ok := r.defs[name]; !ok {
		r.names = append(r.names, name)
	}
	r.defs[name] = definition{p: p, src: src}
}

// fingerprint identifies the rule set's definitions for cache keying.
func (r *Rules) fingerprint() uint64 {
	h := xxhash.New()
	for _, name := range r.names {
		h.WriteString(name)
		h.Write([]byte{0})
		h.WriteString(r.defs[name].src)
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func validIdent(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	out, _, err := identParser.Parse(name)
	return err == nil && out == name
}

func lineError(file, line string, row int, f string, a ...any) *parser.Error {
	loc := parser.NewLocation([]byte(strings.TrimSpace(line)), file, row, 1)
	return parser.NewError(CompileErr, loc, f, a...)
}
