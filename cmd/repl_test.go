// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"path"
	"strings"
	"testing"

	"github.com/parsec-go/parsec/version"
)

func TestHistoryPath(t *testing.T) {
	t.Setenv("HOME", "/home/frege")
	if got, want := historyPath(), path.Join("/home/frege", defaultHistoryFile); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	t.Setenv("HOME", "")
	if got, want := historyPath(), defaultHistoryFile; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBanner(t *testing.T) {
	b := banner()
	if !strings.Contains(b, version.Version) {
		t.Fatalf("expected version in banner, got %q", b)
	}
	if !strings.Contains(b, "Run 'help' to see a list of commands.") {
		t.Fatalf("expected help hint in banner, got %q", b)
	}
}
