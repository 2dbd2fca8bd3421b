// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

// A runner is the execution engine behind a Parser. It consumes input from
// the head of in and threads the accumulated match text through acc.
//
// On success, out is acc extended with the matched text and rest is the
// unconsumed remainder of in. On failure, out echoes acc, rest echoes in
// (a failed runner never consumes input) and err describes the mismatch.
// Between is the single documented exception: when its closing parser fails
// it reports the body text through out alongside the error.
type runner interface {
	run(in, acc string) (out, rest string, err *Error)

	// String renders the parser as a grammar expression.
	String() string
}

// Parser matches a prefix of its input and accumulates the matched text.
//
// The zero Parser is not valid. Construct parsers with the primitive
// matchers and combine them with the methods below; all of them return new
// values and never modify their operands.
type Parser struct {
	r runner
}

// Then returns a parser that matches p followed by next, keeping the text
// matched by both.
func (p Parser) Then(next Parser) Parser {
	return Parser{p.chainWith(next, false)}
}

// SkipThen returns a parser that matches p followed by next, discarding the
// text matched by the step preceding next: p itself, or p's final step when
// p is already a sequence. The input the discarded step consumed stays
// consumed.
func (p Parser) SkipThen(next Parser) Parser {
	return Parser{p.chainWith(next, true)}
}

// Or returns a parser that tries p and falls back to alt if p fails. The
// fallback is attempted against the same input p saw. If every alternative
// fails, the failure of the last one is reported.
func (p Parser) Or(alt Parser) Parser {
	return Parser{p.orWith(alt)}
}

// Parse applies p to input. On success it returns the matched text and the
// unconsumed remainder. On failure the returned error is a *Error locating
// the mismatch, the remainder is input itself, and the matched text is
// empty except where a combinator preserves partial text (see Between).
func (p Parser) Parse(input string) (string, string, error) {
	out, rest, err := p.r.run(input, "")
	if err != nil {
		return out, rest, err.located(input)
	}
	return out, rest, nil
}

// MustParse applies p to input and panics if the input does not match.
func (p Parser) MustParse(input string) (string, string) {
	out, rest, err := p.Parse(input)
	if err != nil {
		panic(err)
	}
	return out, rest
}

// String renders p as a grammar expression.
func (p Parser) String() string {
	return p.r.String()
}

// ParseItems applies p to input and returns the matched items. A parser
// built with SepBy yields one item per list element, also when wrapped by
// Named; any other parser yields a single item holding its matched text.
func ParseItems(p Parser, input string) ([]string, string, error) {
	if ir, ok := itemsRoot(p.r); ok {
		items, rest, err := ir.runItems(input)
		if err != nil {
			return nil, input, err.located(input)
		}
		return items, rest, nil
	}
	out, rest, err := p.Parse(input)
	if err != nil {
		return nil, input, err
	}
	return []string{out}, rest, nil
}

// YieldsItems reports whether ParseItems would split p's matches into per
// element items rather than returning the matched text whole.
func YieldsItems(p Parser) bool {
	_, ok := itemsRoot(p.r)
	return ok
}

// Func adapts fn into a Parser. The function must follow the run contract:
// on success return acc extended with the matched text and the unconsumed
// remainder; on failure return acc and in unchanged together with a freshly
// allocated *Error.
func Func(fn func(in, acc string) (string, string, *Error)) Parser {
	return Parser{funcRunner(fn)}
}

type funcRunner func(in, acc string) (string, string, *Error)

func (f funcRunner) run(in, acc string) (string, string, *Error) {
	return f(in, acc)
}

func (funcRunner) String() string {
	return "<fn>"
}

// itemsRoot unwraps name wrappers to find an item-producing runner.
func itemsRoot(r runner) (itemsRunner, bool) {
	for {
		if n, ok := r.(*named); ok {
			r = n.p
			continue
		}
		ir, ok := r.(itemsRunner)
		return ir, ok
	}
}

// Named returns a parser equal to p that renders as name. The grammar
// compiler wraps rule references with it so compiled parsers print the way
// they were written.
func Named(name string, p Parser) Parser {
	return Parser{&named{name: name, p: p.r}}
}

type named struct {
	name string
	p    runner
}

func (n *named) run(in, acc string) (string, string, *Error) {
	return n.p.run(in, acc)
}

func (n *named) String() string {
	return n.name
}

// groupString renders r, parenthesized if r is a composite whose rendering
// would otherwise regroup under a tighter operator.
func groupString(r runner) string {
	switch r.(type) {
	case *chain, *choice:
		return "(" + r.String() + ")"
	}
	return r.String()
}
