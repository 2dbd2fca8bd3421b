// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import "strings"

// choice tries alternatives in the order they were combined and commits to
// the first that succeeds.
type choice struct {
	alts []runner
}

// orWith returns a new choice extending p with alt. As with chains, only
// the top-level slice is copied; the alternatives are shared.
func (p Parser) orWith(alt Parser) *choice {
	if c, ok := p.r.(*choice); ok {
		alts := make([]runner, len(c.alts)+1)
		copy(alts, c.alts)
		alts[len(c.alts)] = alt.r
		return &choice{alts: alts}
	}
	return &choice{alts: []runner{p.r, alt.r}}
}

// run tries each alternative against the original input and accumulator. A
// failed attempt leaves no trace: the next alternative starts from exactly
// the state the first one saw. If every alternative fails, the last
// failure is reported.
func (c *choice) run(in, acc string) (string, string, *Error) {
	var lastErr *Error
	for _, alt := range c.alts {
		out, rest, err := alt.run(in, acc)
		if err == nil {
			return out, rest, nil
		}
		lastErr = err
	}
	return acc, in, lastErr
}

func (c *choice) String() string {
	parts := make([]string, len(c.alts))
	for i, alt := range c.alts {
		if _, ok := alt.(*choice); ok {
			parts[i] = "(" + alt.String() + ")"
		} else {
			parts[i] = alt.String()
		}
	}
	return strings.Join(parts, " | ")
}
