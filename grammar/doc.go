// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package grammar compiles textual grammar expressions into parsers.
//
// The expression syntax mirrors the combinators of package parser:
//
//	'c'            match the byte c ('\n', '\t', '\r', '\\', '\'' escapes)
//	"text"         match the literal text
//	[abc]          match any byte in the set
//	[^abc]         match any byte not in the set ([^] matches any byte)
//	e*             match e zero or more times
//	e+             match e one or more times
//	a >> b         match a then b, keeping both
//	a << b         match a then b, discarding what precedes the operator
//	a | b          try a, fall back to b
//	(e)            grouping
//	many(e)        same as e*
//	many1(e)       same as e+
//	between(a,b,c) match a, b, c, keeping only b
//	sepby(e, s)    zero or more e separated by s
//	digit          built-in classes: digit, upper, lower, alpha, alnum,
//	               space, hexdigit
//
// Postfix repetition binds tightest, then sequencing, then alternation;
// sequencing and alternation associate left. Whitespace between tokens is
// insignificant.
//
// Rule files give names to expressions, one definition per line:
//
//	# numbers separated by commas
//	num = digit+
//	csv = sepby(num, ',')
//
// A rule may reference the rules defined above it; references are resolved
// at compile time, so later redefinition of a name does not change the
// parsers already compiled against it.
package grammar
