// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/parsec-go/parsec/parser"
)

func TestParseRules(t *testing.T) {
	src := `# numbers separated by commas
num = digit+

csv = sepby(num, ',')
`
	rules, err := ParseRules("test.g", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"num", "csv"}; !cmp.Equal(rules.Names(), want) {
		t.Fatalf("want names %v but got %v", want, rules.Names())
	}

	csv, ok := rules.Get("csv")
	if !ok {
		t.Fatal("expected csv rule")
	}
	out, rest, err := csv.Parse("1,22x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1,22" || rest != "x" {
		t.Fatalf("want (%q, %q) but got (%q, %q)", "1,22", "x", out, rest)
	}

	if src, ok := rules.Source("csv"); !ok || src != "sepby(num, ',')" {
		t.Fatalf("want source %q but got %q", "sepby(num, ',')", src)
	}
}

func TestParseRulesErrors(t *testing.T) {
	tests := []struct {
		note    string
		src     string
		wantMsg string
	}{
		{
			note:    "missing equals",
			src:     "num digit+",
			wantMsg: "expected name = expression",
		},
		{
			note:    "invalid name",
			src:     "2num = digit+",
			wantMsg: `invalid rule name "2num"`,
		},
		{
			note:    "reserved name",
			src:     "many = digit+",
			wantMsg: "many is a reserved name",
		},
		{
			note:    "redefinition",
			src:     "a = 'a'\na = 'b'",
			wantMsg: "rule a redefined",
		},
		{
			note:    "bad expression",
			src:     "a = 'a' >>",
			wantMsg: "unexpected end of grammar",
		},
		{
			note:    "forward reference",
			src:     "a = b\nb = 'b'",
			wantMsg: "b undefined",
		},
	}

	for _, tc := range tests {
		t.Run(tc.note, func(t *testing.T) {
			_, err := ParseRules("", tc.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("want error containing %q but got %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestParseRulesAccumulatesErrors(t *testing.T) {
	src := "a = 'a' >>\nb = 'b'\nc = [\n"

	_, err := ParseRules("bad.g", src)
	if err == nil {
		t.Fatal("expected error")
	}

	errs, ok := err.(parser.Errors)
	if !ok {
		t.Fatalf("want parser.Errors but got %T", err)
	}
	if len(errs) != 2 {
		t.Fatalf("want 2 errors but got %d: %v", len(errs), errs)
	}
	if !strings.HasPrefix(errs[0].Error(), "bad.g:1") {
		t.Fatalf("want first error located on line 1 but got %q", errs[0].Error())
	}
	if !strings.HasPrefix(errs[1].Error(), "bad.g:3") {
		t.Fatalf("want second error located on line 3 but got %q", errs[1].Error())
	}
}

func TestRulesCompileErrorLocation(t *testing.T) {
	_, err := ParseRules("test.g", "num = digit+\nbad = num >> 'x\n")
	if err == nil {
		t.Fatal("expected error")
	}

	errs := err.(parser.Errors)
	if len(errs) != 1 {
		t.Fatalf("want 1 error but got %d", len(errs))
	}
	loc := errs[0].Location
	if loc.File != "test.g" || loc.Row != 2 || loc.Col != 14 {
		t.Fatalf("want test.g:2:14 but got %v:%v:%v", loc.File, loc.Row, loc.Col)
	}
}

func TestRulesDefine(t *testing.T) {
	r := NewRules()

	if _, err := r.Define("num", "digit+"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Define("csv", "sepby(num, ',')"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	csv, _ := r.Get("csv")
	out, _, err := csv.Parse("1,2")
	if err != nil || out != "1,2" {
		t.Fatalf("want %q but got (%q, %v)", "1,2", out, err)
	}

	// Redefinition replaces the binding.
	if _, err := r.Define("num", "'z'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, _ := r.Get("num")
	if out, _, err := num.Parse("z"); err != nil || out != "z" {
		t.Fatalf("want %q but got (%q, %v)", "z", out, err)
	}

	// Parsers compiled against the old binding keep it.
	if out, _, err := csv.Parse("1,2"); err != nil || out != "1,2" {
		t.Fatalf("want old binding to survive but got (%q, %v)", out, err)
	}

	if _, err := r.Define("sepby", "'s'"); err == nil {
		t.Fatal("expected reserved name error")
	}
	if _, err := r.Define("1x", "'x'"); err == nil {
		t.Fatal("expected invalid name error")
	}
}

func TestRulesShadowBuiltin(t *testing.T) {
	r := NewRules()
	if _, err := r.Define("digit", "'x'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Compile("digit+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out, _, err := p.Parse("xx1"); err != nil || out != "xx" {
		t.Fatalf("want shadowed %q but got (%q, %v)", "xx", out, err)
	}
}

func TestRulesUnset(t *testing.T) {
	r := NewRules()
	if _, err := r.Define("a", "'a'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Define("b", "'b'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Unset("a") {
		t.Fatal("expected unset to report an existing binding")
	}
	if r.Unset("a") {
		t.Fatal("expected unset to report a missing binding")
	}
	if want := []string{"b"}; !cmp.Equal(r.Names(), want) {
		t.Fatalf("want names %v but got %v", want, r.Names())
	}
	if _, err := r.Compile("a"); err == nil {
		t.Fatal("expected compile error after unset")
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.g")
	ext := filepath.Join(dir, "ext.g")
	if err := os.WriteFile(base, []byte("digits = digit+\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ext, []byte("pair = digits >> ',' >> digits\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRules(base, ext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"digits", "pair"}; !cmp.Equal(r.Names(), want) {
		t.Fatalf("want names %v but got %v", want, r.Names())
	}

	p, ok := r.Get("pair")
	if !ok {
		t.Fatal("expected pair to be defined")
	}
	if out, rest, err := p.Parse("12,34!"); err != nil || out != "12,34" || rest != "!" {
		t.Fatalf("want (%q, %q) but got (%q, %q, %v)", "12,34", "!", out, rest, err)
	}
}

func TestLoadRulesRedefinedAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.g")
	b := filepath.Join(dir, "b.g")
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("digits = digit+\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := LoadRules(a, b)
	if err == nil || !strings.Contains(err.Error(), "digits redefined") {
		t.Fatalf("want redefinition error but got %v", err)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.g")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
