// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

// Many returns a parser matching p zero or more times, accumulating the
// text of every match. It never fails: the attempt that ends the run
// consumes nothing and contributes nothing.
func Many(p Parser) Parser {
	return Parser{&repeat{p: p.r}}
}

// Many1 returns a parser matching p one or more times. The first attempt
// must succeed; after that it behaves like Many.
func Many1(p Parser) Parser {
	return Parser{&repeat{p: p.r, required: true}}
}

type repeat struct {
	p        runner
	required bool
}

// run applies p until it fails. A successful attempt that consumes no input
// would repeat forever, so it is reported as a NoProgressErr failure
// instead.
func (r *repeat) run(in, acc string) (string, string, *Error) {
	out, rest := acc, in
	for i := 0; ; i++ {
		o, next, err := r.p.run(rest, out)
		if err != nil {
			if i == 0 && r.required {
				return acc, in, err
			}
			return out, rest, nil
		}
		if len(next) == len(rest) {
			return acc, in, newProgressError(next, "repetition")
		}
		out, rest = o, next
	}
}

func (r *repeat) String() string {
	if r.required {
		return groupString(r.p) + "+"
	}
	return groupString(r.p) + "*"
}
