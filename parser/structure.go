// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import "fmt"

// Between returns a parser matching open, then body, then close, keeping
// only the text matched by body.
//
// If open or body fails, that failure is reported and no input is consumed.
// If close fails, the close failure is reported and no input is consumed,
// but the body text is preserved in the returned match text so callers can
// see how far the parse got. A non-nil error remains authoritative.
func Between(open, body, close Parser) Parser {
	return Parser{&between{open: open.r, body: body.r, close: close.r}}
}

type between struct {
	open  runner
	body  runner
	close runner
}

func (b *between) run(in, acc string) (string, string, *Error) {
	_, r1, err := b.open.run(in, acc)
	if err != nil {
		return acc, in, err
	}
	out, r2, err := b.body.run(r1, acc)
	if err != nil {
		return acc, in, err
	}
	_, r3, err := b.close.run(r2, out)
	if err != nil {
		return out, in, err
	}
	return out, r3, nil
}

func (b *between) String() string {
	return fmt.Sprintf("between(%s, %s, %s)", b.open, b.body, b.close)
}

// SepBy returns a parser matching zero or more occurrences of body
// separated by sep.
//
// Zero occurrences is a success that consumes nothing. After at least one
// occurrence, a failing separator ends the run cleanly. A failing body
// after a separator that consumed input is a hard failure: the body's error
// is reported and the whole run is rolled back. As a component of a larger
// parser, SepBy contributes the full consumed span, separators included;
// the individual items are available through ParseItems.
func SepBy(body, sep Parser) Parser {
	return Parser{&sepBy{body: body.r, sep: sep.r}}
}

type sepBy struct {
	body runner
	sep  runner
}

func (s *sepBy) run(in, acc string) (string, string, *Error) {
	out, rest, _, err := s.runAll(in, acc, false)
	return out, rest, err
}

// itemsRunner is implemented by parsers that produce a list of items rather
// than a single span. ParseItems uses it.
type itemsRunner interface {
	runItems(input string) ([]string, string, *Error)
}

func (s *sepBy) runItems(input string) ([]string, string, *Error) {
	_, rest, items, err := s.runAll(input, "", true)
	if err != nil {
		return nil, input, err
	}
	return items, rest, nil
}

// runAll is the engine shared by both result shapes. The accumulator
// grows by items and separators alike; items additionally records each
// body match on its own when requested.
func (s *sepBy) runAll(in, acc string, collect bool) (string, string, []string, *Error) {
	first, r1, err := s.body.run(in, acc)
	if err != nil {
		return acc, in, []string{}, nil
	}
	if len(r1) == len(in) {
		return acc, in, nil, newProgressError(r1, "separated list")
	}

	out, rest := first, r1
	var items []string
	if collect {
		items = []string{first[len(acc):]}
	}

	for {
		so, sr, err := s.sep.run(rest, out)
		if err != nil {
			return out, rest, items, nil
		}
		bo, br, err := s.body.run(sr, so)
		if err != nil {
			if len(sr) == len(rest) {
				// The separator matched nothing, so nothing was
				// committed: end the run cleanly.
				return out, rest, items, nil
			}
			return acc, in, nil, err
		}
		if len(br) == len(rest) {
			return acc, in, nil, newProgressError(br, "separated list")
		}
		if collect {
			items = append(items, bo[len(so):])
		}
		out, rest = bo, br
	}
}

func (s *sepBy) String() string {
	return fmt.Sprintf("sepby(%s, %s)", s.body, s.sep)
}
