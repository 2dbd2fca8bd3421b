// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package grammar

import "testing"

func TestCacheReusesCompiledParsers(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1, err := c.Compile(nil, "digit+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.Compile(nil, "digit+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 != p2 {
		t.Fatal("want cache hit to return the same parser")
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 cached parser but got %d", c.Len())
	}

	p3, err := c.Compile(nil, "alpha+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p3 == p1 {
		t.Fatal("want different expressions to compile separately")
	}
	if c.Len() != 2 {
		t.Fatalf("want 2 cached parsers but got %d", c.Len())
	}
}

func TestCacheKeysIncludeRuleDefinitions(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewRules()
	if _, err := r.Define("num", "digit+"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1, err := c.Compile(r, "num")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out, _, err := p1.Parse("42"); err != nil || out != "42" {
		t.Fatalf("want %q but got (%q, %v)", "42", out, err)
	}

	// Redefining the rule changes the key, so the stale parser is not
	// served.
	if _, err := r.Define("num", "'z'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := c.Compile(r, "num")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 == p2 {
		t.Fatal("want redefinition to miss the cache")
	}
	if out, _, err := p2.Parse("z"); err != nil || out != "z" {
		t.Fatalf("want %q but got (%q, %v)", "z", out, err)
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Compile(nil, "'a"); err == nil {
		t.Fatal("expected compile error")
	}
	if c.Len() != 0 {
		t.Fatalf("want no cached entries but got %d", c.Len())
	}
}

func TestNewCacheRejectsNonPositiveSize(t *testing.T) {
	if _, err := NewCache(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}
