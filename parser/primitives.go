// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import (
	"strconv"
	"strings"
)

// Matching is byte-wise throughout: inputs are treated as byte sequences
// and multi-byte encodings receive no special handling.

// Char returns a parser matching exactly the byte c.
func Char(c byte) Parser {
	return Parser{charLit(c)}
}

type charLit byte

func (c charLit) run(in, acc string) (string, string, *Error) {
	if len(in) == 0 {
		return acc, in, newMatchError(in, "expected %s but got end of input", quoteByte(byte(c)))
	}
	if in[0] != byte(c) {
		return acc, in, newMatchError(in, "expected %s but got %s", quoteByte(byte(c)), quoteByte(in[0]))
	}
	return acc + in[:1], in[1:], nil
}

func (c charLit) String() string {
	return quoteByte(byte(c))
}

// String returns a parser matching exactly the literal lit.
func String(lit string) Parser {
	return Parser{strLit(lit)}
}

type strLit string

func (s strLit) run(in, acc string) (string, string, *Error) {
	lit := string(s)
	if strings.HasPrefix(in, lit) {
		return acc + lit, in[len(lit):], nil
	}
	got := in[:min(len(in), len(lit))]
	if len(in) == 0 {
		return acc, in, newMatchError(in, "expected %q but got end of input", lit)
	}
	return acc, in, newMatchError(in, "expected %q but got %q", lit, got)
}

func (s strLit) String() string {
	return strconv.Quote(string(s))
}

// OneOf returns a parser matching any single byte contained in set.
func OneOf(set string) Parser {
	return Parser{&byteSet{set: set}}
}

// NoneOf returns a parser matching any single byte not contained in set.
func NoneOf(set string) Parser {
	return Parser{&byteSet{set: set, negate: true}}
}

type byteSet struct {
	set    string
	negate bool
}

func (b *byteSet) run(in, acc string) (string, string, *Error) {
	if len(in) == 0 {
		return acc, in, newMatchError(in, "expected %s but got end of input", b.String())
	}
	if (strings.IndexByte(b.set, in[0]) >= 0) == b.negate {
		return acc, in, newMatchError(in, "expected %s but got %s", b.String(), quoteByte(in[0]))
	}
	return acc + in[:1], in[1:], nil
}

func (b *byteSet) String() string {
	if b.negate {
		return "[^" + b.set + "]"
	}
	return "[" + b.set + "]"
}

func quoteByte(c byte) string {
	return strconv.QuoteRune(rune(c))
}
