// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import "strings"

// chain runs a fixed sequence of steps. discard[i] set means the text
// matched by step i is excluded from the result; the final step has no
// flag, so len(discard) == len(steps)-1. The input a discarded step
// consumed stays consumed either way.
type chain struct {
	steps   []runner
	discard []bool
}

// chainWith returns a new chain extending p with next. Extending an
// existing chain copies only its top-level slices; the steps themselves are
// shared, which is safe because runners are immutable.
func (p Parser) chainWith(next Parser, discard bool) *chain {
	if c, ok := p.r.(*chain); ok {
		n := len(c.steps)
		steps := make([]runner, n+1)
		copy(steps, c.steps)
		steps[n] = next.r
		flags := make([]bool, n)
		copy(flags, c.discard)
		flags[n-1] = discard
		return &chain{steps: steps, discard: flags}
	}
	return &chain{steps: []runner{p.r, next.r}, discard: []bool{discard}}
}

// run applies the steps in order. Each step receives the accumulator as it
// stands after the last kept step, so a discarded step's text never reaches
// the steps that follow it. Any step failure rolls the whole sequence back:
// the caller's accumulator and input are returned untouched together with
// that step's error.
func (c *chain) run(in, acc string) (string, string, *Error) {
	res := acc
	rest := in
	last := len(c.steps) - 1
	for i, step := range c.steps {
		out, next, err := step.run(rest, res)
		if err != nil {
			return acc, in, err
		}
		rest = next
		if i == last || !c.discard[i] {
			res = out
		}
	}
	return res, rest, nil
}

func (c *chain) String() string {
	var b strings.Builder
	for i, step := range c.steps {
		if i > 0 {
			if c.discard[i-1] {
				b.WriteString(" << ")
			} else {
				b.WriteString(" >> ")
			}
		}
		b.WriteString(groupString(step))
	}
	return b.String()
}
