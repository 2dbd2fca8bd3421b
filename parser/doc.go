// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package parser implements combinator-based recursive descent parsing.
//
// Parsers are built from primitive matchers (Char, String, OneOf, NoneOf)
// and composed with sequencing (Then, SkipThen), alternation (Or),
// repetition (Many, Many1) and the structural combinators Between and
// SepBy. A parser matches a prefix of its input and accumulates the text it
// matched:
//
//	digits := parser.Many1(parser.OneOf("0123456789"))
//	value, rest, err := digits.Parse("123abc") // "123", "abc", nil
//
// Composition never modifies its operands. Combining two parsers returns a
// new value that shares structure with the originals, so a parser may be
// reused in any number of compositions and applied to different inputs from
// concurrent goroutines.
//
// Failures are reported as *Error values carrying a code, a message and,
// once returned through Parse, the row, column and byte offset of the
// mismatch. A failed parser consumes no input.
package parser
