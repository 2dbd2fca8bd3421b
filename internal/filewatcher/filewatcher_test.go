// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/parsec-go/parsec/grammar"
	"github.com/parsec-go/parsec/logging/test"
	"github.com/parsec-go/parsec/util"
)

func TestWatcherReload(t *testing.T) {
	defer leaktest.Check(t)()

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.g")
	if err := os.WriteFile(path, []byte("digits = digit+\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var last atomic.Pointer[grammar.Rules]
	onReload := func(_ context.Context, _ time.Duration, rules *grammar.Rules, err error) {
		if err == nil {
			last.Store(rules)
		}
	}

	w := NewFileWatcher([]string{path}, onReload, test.New())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("digits = digit+\nword = alpha+\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := util.WaitFunc(func() bool {
		rules := last.Load()
		return rules != nil && rules.Len() == 2
	}, 10*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherReloadError(t *testing.T) {
	defer leaktest.Check(t)()

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.g")
	if err := os.WriteFile(path, []byte("digits = digit+\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var failed atomic.Bool
	onReload := func(_ context.Context, _ time.Duration, _ *grammar.Rules, err error) {
		if err != nil {
			failed.Store(true)
		}
	}

	logger := test.New()
	w := NewFileWatcher([]string{path}, onReload, logger)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("digits = bogus+\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := util.WaitFunc(failed.Load, 10*time.Millisecond, 5*time.Second); err != nil {
		t.Fatal("timed out waiting for reload error")
	}

	if entries := logger.Entries(); len(entries) == 0 {
		t.Fatal("expected watch paths to be logged")
	}
}

func TestWatcherStartMissingPath(t *testing.T) {
	defer leaktest.Check(t)()

	w := NewFileWatcher([]string{filepath.Join(t.TempDir(), "no", "such", "rules.g")}, nil, test.New())
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing watch directory")
	}
}
