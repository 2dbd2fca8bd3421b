// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package tester contains utilities for executing grammar fixtures.
package tester

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/parsec-go/parsec/grammar"
	"github.com/parsec-go/parsec/parser"
)

// Fixture is one fixture file: a grammar block plus the cases that run
// against it.
type Fixture struct {
	File    string
	Grammar string
	Cases   []Case
}

// Case is a single parse expectation inside a fixture. Parser holds a
// grammar expression compiled against the fixture's rules, so a case can
// name a rule or spell out an expression inline. Wants that are not set
// are not checked.
type Case struct {
	Note          string    `yaml:"note"`
	Parser        string    `yaml:"parser"`
	Input         string    `yaml:"input"`
	WantResult    *string   `yaml:"want_result"`
	WantRemaining *string   `yaml:"want_remaining"`
	WantItems     *[]string `yaml:"want_items"`
	WantError     string    `yaml:"want_error"`

	row int
}

// UnmarshalYAML records the case's position in the fixture file alongside
// the declared fields.
func (c *Case) UnmarshalYAML(value *yaml.Node) error {
	type rawCase Case
	var raw rawCase
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = Case(raw)
	c.row = value.Line
	return nil
}

type fixtureFile struct {
	Grammar string `yaml:"grammar"`
	Cases   []Case `yaml:"cases"`
}

// ParseFixture parses one fixture file.
func ParseFixture(filename string, bs []byte) (*Fixture, error) {
	var raw fixtureFile
	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	f := &Fixture{
		File:    filename,
		Grammar: raw.Grammar,
		Cases:   raw.Cases,
	}
	for i := range f.Cases {
		if f.Cases[i].Note == "" {
			f.Cases[i].Note = fmt.Sprintf("case %d", i+1)
		}
	}
	return f, nil
}

// Load reads fixture files under paths. Directories are searched for
// .yaml and .yml files. Ignore patterns filter file and directory names.
func Load(paths []string, ignore []string) ([]*Fixture, error) {
	globs := make([]glob.Glob, 0, len(ignore))
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %v", pattern, err)
		}
		globs = append(globs, g)
	}

	var fixtures []*Fixture
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if ignored(globs, filepath.Base(path)) {
				continue
			}
			f, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			fixtures = append(fixtures, f)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && ignored(globs, d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !isFixtureFile(d.Name()) || ignored(globs, d.Name()) {
				return nil
			}
			f, err := loadFile(p)
			if err != nil {
				return err
			}
			fixtures = append(fixtures, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return fixtures, nil
}

func loadFile(path string) (*Fixture, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(path, bs)
}

func isFixtureFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func ignored(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Run loads and executes all fixtures found under paths.
func Run(ctx context.Context, paths ...string) ([]*Result, error) {
	fixtures, err := Load(paths, nil)
	if err != nil {
		return nil, err
	}
	ch, err := NewRunner().RunFixtures(ctx, fixtures)
	if err != nil {
		return nil, err
	}
	result := []*Result{}
	for r := range ch {
		result = append(result, r)
	}
	return result, nil
}

// Result represents a single fixture case result.
type Result struct {
	Location *parser.Location `json:"location,omitempty"`
	File     string           `json:"file"`
	Note     string           `json:"note"`
	Fail     bool             `json:"fail,omitempty"`
	Error    error            `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
	Output   []byte           `json:"output,omitempty"`
}

func newResult(loc *parser.Location, file, note string) *Result {
	return &Result{
		Location: loc,
		File:     file,
		Note:     note,
	}
}

// Pass returns true if the test case passed.
func (r *Result) Pass() bool {
	return !r.Fail && r.Error == nil
}

func (r *Result) String() string {
	return fmt.Sprintf("%v: %v (%v)", r.Note, r.outcome(), r.Duration)
}

func (r *Result) outcome() string {
	if r.Pass() {
		return "PASS"
	}
	if r.Fail {
		return "FAIL"
	}
	return "ERROR"
}

// Runner implements fixture discovery and execution.
type Runner struct {
	filter string
	cache  *grammar.Cache
}

// NewRunner returns a new runner.
func NewRunner() *Runner {
	// The size only bounds pathological fixture sets; fixtures reusing the
	// same case parsers stay well under it.
	cache, err := grammar.NewCache(512)
	if err != nil {
		panic(err)
	}
	return &Runner{cache: cache}
}

// Filter will set a case note regex filter for the runner. Only cases
// whose note matches the filter will be run.
func (r *Runner) Filter(regex string) *Runner {
	r.filter = regex
	return r
}

// RunFixtures executes all cases in the supplied fixtures and streams the
// results on the returned channel.
func (r *Runner) RunFixtures(ctx context.Context, fixtures []*Fixture) (chan *Result, error) {
	var noteRegex *regexp.Regexp
	var err error

	if r.filter != "" {
		noteRegex, err = regexp.Compile(r.filter)
		if err != nil {
			return nil, err
		}
	}

	ch := make(chan *Result)

	go func() {
		defer close(ch)
		for _, f := range fixtures {
			rules, err := grammar.ParseRules(f.File, f.Grammar)
			if err != nil {
				tr := newResult(errLocation(err), f.File, "grammar")
				tr.Error = err
				select {
				case ch <- tr:
					continue
				case <-ctx.Done():
					return
				}
			}
			for _, c := range f.Cases {
				if noteRegex != nil && !noteRegex.MatchString(c.Note) {
					continue
				}
				select {
				case ch <- r.runCase(rules, f, c):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func (r *Runner) runCase(rules *grammar.Rules, f *Fixture, c Case) (tr *Result) {
	t0 := time.Now()
	loc := parser.NewLocation([]byte(c.Note), f.File, c.row, 1)
	tr = newResult(loc, f.File, c.Note)
	defer func() {
		tr.Duration = time.Since(t0)
	}()

	if c.Parser == "" {
		tr.Error = loc.Errorf("case has no parser")
		return tr
	}

	p, err := r.cache.Compile(rules, c.Parser)
	if err != nil {
		tr.Error = loc.Wrapf(err, "parser %q", c.Parser)
		return tr
	}

	var out, rest string
	var items []string
	if c.WantItems != nil {
		items, rest, err = parser.ParseItems(p, c.Input)
		if err == nil {
			out = c.Input[:len(c.Input)-len(rest)]
		}
	} else {
		out, rest, err = p.Parse(c.Input)
	}

	if c.WantError != "" {
		if err == nil {
			tr.Fail = true
			tr.Output = fmt.Appendf(nil, "want error %q but parse succeeded with result %q", c.WantError, out)
		} else if !matchError(err, c.WantError) {
			tr.Fail = true
			tr.Output = fmt.Appendf(nil, "want error %q but got: %v", c.WantError, err)
		}
		return tr
	}

	if err != nil {
		tr.Fail = true
		tr.Output = fmt.Appendf(nil, "unexpected error: %v", err)
		return tr
	}

	var buf bytes.Buffer
	if c.WantResult != nil && out != *c.WantResult {
		fmt.Fprintf(&buf, "want result %q but got %q\n", *c.WantResult, out)
		fmt.Fprintf(&buf, "diff: %s\n", diffStrings(*c.WantResult, out))
	}
	if c.WantRemaining != nil && rest != *c.WantRemaining {
		fmt.Fprintf(&buf, "want remaining %q but got %q\n", *c.WantRemaining, rest)
		fmt.Fprintf(&buf, "diff: %s\n", diffStrings(*c.WantRemaining, rest))
	}
	if c.WantItems != nil && !cmp.Equal(*c.WantItems, items, cmpopts.EquateEmpty()) {
		fmt.Fprintf(&buf, "items mismatch (-want, +got):\n%s", cmp.Diff(*c.WantItems, items))
	}
	if buf.Len() > 0 {
		tr.Fail = true
		tr.Output = buf.Bytes()
	}
	return tr
}

// matchError reports whether err matches want, which is either an error
// code or a message substring.
func matchError(err error, want string) bool {
	if perr, ok := err.(*parser.Error); ok && perr.Code == want {
		return true
	}
	return strings.Contains(err.Error(), want)
}

func errLocation(err error) *parser.Location {
	switch typed := err.(type) {
	case *parser.Error:
		return typed.Location
	case parser.Errors:
		if len(typed) > 0 {
			return typed[0].Location
		}
	}
	return nil
}

func diffStrings(want, got string) string {
	dmp := diffmatchpatch.New()
	return dmp.DiffPrettyText(dmp.DiffMain(want, got, false))
}
