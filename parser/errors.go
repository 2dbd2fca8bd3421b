// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package parser

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MatchErr indicates the input did not match the expected form.
	MatchErr = "parsec_match_error"

	// NoProgressErr indicates a repetition succeeded without consuming
	// input and was stopped before it could repeat forever.
	NoProgressErr = "parsec_no_progress_error"
)

// Errors represents a series of errors encountered during parsing or
// grammar compilation.
type Errors []*Error

func (e Errors) Error() string {

	if len(e) == 0 {
		return "no error(s)"
	}

	if len(e) == 1 {
		return fmt.Sprintf("1 error occurred: %v", e[0].Error())
	}

	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}

	return fmt.Sprintf("%d errors occurred:\n%s", len(e), strings.Join(s, "\n"))
}

// IsError returns true if err is a parser error with the given code.
func IsError(code string, err error) bool {
	if err, ok := err.(*Error); ok {
		return err.Code == code
	}
	return false
}

// Error represents a single mismatch caught during parsing.
type Error struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`

	// rest is the length of the unconsumed suffix at the point of failure.
	// The top-level entry points resolve it against the full input to
	// produce the Location.
	rest int
}

func (e *Error) Error() string {

	if e.Location == nil {
		return e.Message
	}

	prefix := ""

	if len(e.Location.File) > 0 {
		prefix += e.Location.File + ":" + fmt.Sprint(e.Location.Row)
	} else {
		prefix += fmt.Sprint(e.Location.Row) + ":" + fmt.Sprint(e.Location.Col)
	}

	return fmt.Sprintf("%v: %v", prefix, e.Message)
}

// NewError returns a new Error object.
func NewError(code string, loc *Location, f string, a ...any) *Error {
	return &Error{
		Code:     code,
		Location: loc,
		Message:  fmt.Sprintf(f, a...),
	}
}

// located returns a copy of e with the Location resolved against the input
// the parse started from. Errors that already carry a location are returned
// unchanged.
func (e *Error) located(input string) *Error {
	if e.Location != nil {
		return e
	}
	offset := len(input) - e.rest
	if offset < 0 || offset > len(input) {
		offset = len(input)
	}
	row, col := 1, 1
	for i := range offset {
		if input[i] == '\n' {
			row++
			col = 1
		} else {
			col++
		}
	}
	end := min(offset+1, len(input))
	cp := *e
	cp.Location = &Location{
		Text:   []byte(input[offset:end]),
		Row:    row,
		Col:    col,
		Offset: offset,
	}
	return &cp
}

func newMatchError(rest string, f string, a ...any) *Error {
	return &Error{
		Code:    MatchErr,
		Message: fmt.Sprintf(f, a...),
		rest:    len(rest),
	}
}

func newProgressError(rest string, what string) *Error {
	return &Error{
		Code:    NoProgressErr,
		Message: fmt.Sprintf("zero-length match in %s", what),
		rest:    len(rest),
	}
}

// Location records a position in parser input.
type Location struct {
	Text   []byte `json:"-"`              // The input fragment at the location.
	File   string `json:"file,omitempty"` // The name of the input source (which may be empty).
	Row    int    `json:"row"`            // The line in the input.
	Col    int    `json:"col"`            // The column in the row.
	Offset int    `json:"offset"`         // The byte offset from the start of the input.
}

// NewLocation returns a new Location object.
func NewLocation(text []byte, file string, row int, col int) *Location {
	return &Location{Text: text, File: file, Row: row, Col: col}
}

// Errorf returns a new error value with a message formatted to include the
// location info (e.g., line, column, filename, etc.)
func (loc *Location) Errorf(f string, a ...any) error {
	return errors.New(loc.Format(f, a...))
}

// Wrapf returns a new error value that wraps an existing error with a message
// formatted to include the location info.
func (loc *Location) Wrapf(err error, f string, a ...any) error {
	return errors.Wrap(err, loc.Format(f, a...))
}

// Format returns a formatted string prefixed with the location information.
func (loc *Location) Format(f string, a ...any) string {
	if len(loc.File) > 0 {
		f = fmt.Sprintf("%v:%v: %v", loc.File, loc.Row, f)
	} else {
		f = fmt.Sprintf("%v:%v: %v", loc.Row, loc.Col, f)
	}
	return fmt.Sprintf(f, a...)
}
