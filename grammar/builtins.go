// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import (
	"slices"

	"github.com/parsec-go/parsec/chars"
	"github.com/parsec-go/parsec/parser"
)

// builtins maps bare grammar names to character class constructors. Rule
// definitions shadow them.
var builtins = map[string]func() parser.Parser{
	"digit":    chars.Digit,
	"upper":    chars.Upper,
	"lower":    chars.Lower,
	"alpha":    chars.Alpha,
	"alnum":    chars.Alnum,
	"space":    chars.Space,
	"hexdigit": chars.HexDigit,
}

// callForms are the combinator call names reserved by the grammar. They
// cannot be used as rule names.
var callForms = map[string]bool{
	"many":    true,
	"many1":   true,
	"between": true,
	"sepby":   true,
}

// Builtins returns the built-in class names in sorted order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
