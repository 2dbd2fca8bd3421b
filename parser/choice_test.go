// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import "testing"

func TestChoice(t *testing.T) {
	tests := []struct {
		note     string
		p        Parser
		input    string
		wantOut  string
		wantRest string
	}{
		{
			note:     "first alternative",
			p:        Char('a').Or(Char('b')),
			input:    "ax",
			wantOut:  "a",
			wantRest: "x",
		},
		{
			note:     "second alternative",
			p:        Char('a').Or(Char('b')),
			input:    "bx",
			wantOut:  "b",
			wantRest: "x",
		},
		{
			note:     "order decides between overlapping alternatives",
			p:        String("ab").Or(String("a")),
			input:    "a!",
			wantOut:  "a",
			wantRest: "!",
		},
		{
			note:     "first success commits",
			p:        String("a").Or(String("ab")),
			input:    "ab",
			wantOut:  "a",
			wantRest: "b",
		},
		{
			note:     "three alternatives",
			p:        Char('a').Or(Char('b')).Or(Char('c')),
			input:    "cx",
			wantOut:  "c",
			wantRest: "x",
		},
		{
			note:     "sequence alternatives",
			p:        Char('a').Then(Char('b')).Or(Char('a').Then(Char('c'))),
			input:    "ac",
			wantOut:  "ac",
			wantRest: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			assertMatch(t, tc.p, tc.input, tc.wantOut, tc.wantRest)
		})
	}
}

func TestChoiceAllFail(t *testing.T) {
	p := Char('a').Or(Char('b')).Or(Char('c'))

	perr := assertMismatch(t, p, "x", MatchErr, "")
	if want := `expected 'c' but got 'x'`; perr.Message != want {
		t.Fatalf("want last alternative's message %q but got %q", want, perr.Message)
	}
}

// A failed alternative that reports partial text must not leak it into the
// attempt that follows: every alternative starts from the original state.
func TestChoiceRetryFromOriginalState(t *testing.T) {
	bracketed := Between(Char('('), Char('x'), Char(')'))
	p := bracketed.Or(String("(x"))

	// bracketed fails at the closing parser after matching "x".
	assertMatch(t, p, "(x!", "(x", "!")
}

// A choice committed inside a sequence is not revisited when a later step
// fails.
func TestChoiceNoBacktrackingAcrossCommit(t *testing.T) {
	p := String("ab").Or(String("a")).Then(Char('b'))

	assertMismatch(t, p, "ab", MatchErr, `expected 'b' but got end of input`)
}

func TestChoiceAsChainStep(t *testing.T) {
	digitOrDash := OneOf("0123456789").Or(Char('-'))
	p := Char('<').SkipThen(digitOrDash).Then(digitOrDash)

	assertMatch(t, p, "<-4!", "-4", "!")
}
