// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package chars provides parsers for common character classes. All classes
// are ASCII; byte-wise matching is inherited from package parser.
package chars

import "github.com/parsec-go/parsec/parser"

const (
	digits    = "0123456789"
	uppers    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowers    = "abcdefghijklmnopqrstuvwxyz"
	spaces    = " \t\r\n"
	hexDigits = "0123456789abcdefABCDEF"
)

// Digit matches a single decimal digit.
func Digit() parser.Parser {
	return parser.OneOf(digits)
}

// Upper matches a single upper-case letter.
func Upper() parser.Parser {
	return parser.OneOf(uppers)
}

// Lower matches a single lower-case letter.
func Lower() parser.Parser {
	return parser.OneOf(lowers)
}

// Alpha matches a single letter of either case.
func Alpha() parser.Parser {
	return Upper().Or(Lower())
}

// Alnum matches a single letter or decimal digit.
func Alnum() parser.Parser {
	return Alpha().Or(Digit())
}

// Space matches a single whitespace character.
func Space() parser.Parser {
	return parser.OneOf(spaces)
}

// HexDigit matches a single hexadecimal digit of either case.
func HexDigit() parser.Parser {
	return parser.OneOf(hexDigits)
}
