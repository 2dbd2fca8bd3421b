// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/parsec-go/parsec/cmd/formats"
	"github.com/parsec-go/parsec/cmd/internal/env"
	"github.com/parsec-go/parsec/tester"
	"github.com/parsec-go/parsec/util"
)

type testCommandParams struct {
	verbose      bool
	outputFormat *util.EnumFlag
	runRegex     string
	ignore       []string
	count        int
	watch        bool
	stopChan     chan os.Signal
	output       io.Writer
	errOutput    io.Writer
}

func newTestCommandParams() testCommandParams {
	return testCommandParams{
		outputFormat: formats.Flag(formats.Pretty, formats.JSON),
		output:       os.Stdout,
		errOutput:    os.Stderr,
		stopChan:     make(chan os.Signal, 1),
	}
}

func parsecTest(args []string, testParams testCommandParams) (int, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fixtures, err := tester.Load(args, testParams.ignore)
	if err != nil {
		fmt.Fprintln(testParams.errOutput, err)
		return 1, err
	}

	for range testParams.count {
		exitCode, err := runFixtures(ctx, fixtures, testParams)
		if exitCode != 0 {
			if testParams.watch {
				break
			}
			return exitCode, err
		}
	}

	if !testParams.watch {
		return 0, nil
	}

	done := make(chan struct{})
	go startFixtureWatcher(ctx, testParams, args, done)

	signal.Notify(testParams.stopChan, syscall.SIGINT, syscall.SIGTERM)

	<-testParams.stopChan
	done <- struct{}{}
	return 0, nil
}

func runFixtures(ctx context.Context, fixtures []*tester.Fixture, testParams testCommandParams) (int, error) {
	runner := tester.NewRunner().Filter(testParams.runRegex)

	ch, err := runner.RunFixtures(ctx, fixtures)
	if err != nil {
		fmt.Fprintln(testParams.errOutput, err)
		return 1, err
	}

	exitCode := 0
	dup := make(chan *tester.Result)

	go func() {
		defer close(dup)
		for tr := range ch {
			if !tr.Pass() {
				exitCode = 2
			}
			dup <- tr
		}
	}()

	var reporter tester.Reporter

	switch testParams.outputFormat.String() {
	case formats.JSON:
		reporter = tester.JSONReporter{
			Output: testParams.output,
		}
	default:
		reporter = tester.PrettyReporter{
			Output:  testParams.output,
			Verbose: testParams.verbose,
		}
	}

	if err := reporter.Report(dup); err != nil {
		fmt.Fprintln(testParams.errOutput, err)
		return 1, err
	}

	return exitCode, nil
}

func startFixtureWatcher(ctx context.Context, testParams testCommandParams, paths []string, done chan struct{}) {
	watcher, err := getWatcher(paths)
	if err != nil {
		fmt.Fprintln(testParams.errOutput, "Error creating path watcher: ", err)
		os.Exit(1)
	}
	readFixtureWatcher(ctx, testParams, watcher, paths, done)
}

func readFixtureWatcher(ctx context.Context, testParams testCommandParams, watcher *fsnotify.Watcher, paths []string, done chan struct{}) {
	for {
		fmt.Fprintln(testParams.output, strings.Repeat("*", 80))
		fmt.Fprintln(testParams.output, "Watching for changes ...")
		select {
		case evt := <-watcher.Events:
			removalMask := fsnotify.Remove | fsnotify.Rename
			mask := fsnotify.Create | fsnotify.Write | removalMask
			if (evt.Op & mask) != 0 {
				processFixtureUpdate(ctx, testParams, paths)
			}
		case <-done:
			watcher.Close()
			return
		}
	}
}

func processFixtureUpdate(ctx context.Context, testParams testCommandParams, paths []string) {
	fixtures, err := tester.Load(paths, testParams.ignore)
	if err != nil {
		fmt.Fprintln(testParams.output, err)
		return
	}

	for range testParams.count {
		if exitCode, _ := runFixtures(ctx, fixtures, testParams); exitCode != 0 {
			return
		}
	}
}

// getWatcher watches the parent directories of file paths so that
// rename-and-replace saves keep producing events.
func getWatcher(rootPaths []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := map[string]struct{}{}
	for _, path := range rootPaths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dirs[path] = struct{}{}
		} else {
			dirs[filepath.Dir(path)] = struct{}{}
		}
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := watcher.Add(dir); err != nil {
			return nil, err
		}
	}

	return watcher, nil
}

func init() {
	testParams := newTestCommandParams()

	testCommand := &cobra.Command{
		Use:   "test <path> [path [...]]",
		Short: "Execute grammar fixture cases",
		Long: `Execute grammar fixture cases.

The 'test' command takes a file or directory path as input and executes all
cases discovered in matching files. Directories are searched recursively for
.yaml and .yml fixture files.

A fixture file carries a grammar block and the cases that run against it:

	grammar: |
	  num = digit+
	  csv = sepby(num, ',')

	cases:
	  - note: two fields
	    parser: csv
	    input: "1,22"
	    want_items: ["1", "22"]
	  - note: trailing separator stops
	    parser: csv
	    input: "1,"
	    want_result: "1"
	    want_remaining: ","

The parser field is a grammar expression compiled against the fixture's
rules, so a case can name a rule or spell out an expression inline. A case
fails when any declared want_result, want_remaining, want_items, or
want_error expectation does not match.

Example test run:

	$ parsec test ./fixtures/

The exit code is 0 when all cases pass, 2 when any case fails or errors, and
1 when the fixtures themselves cannot be loaded.

The --watch flag can be used to monitor fixture file-system changes. When a
change is detected, parsec reloads the fixtures and then re-runs the cases.
`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("specify at least one file")
			}
			return env.CmdFlags.CheckEnvironmentVariables(cmd)
		},
		Run: func(_ *cobra.Command, args []string) {
			exitCode, _ := parsecTest(args, testParams)
			os.Exit(exitCode)
		},
	}

	testCommand.Flags().BoolVarP(&testParams.verbose, "verbose", "v", false, "set verbose reporting mode")
	testCommand.Flags().StringVarP(&testParams.runRegex, "run", "r", "", "run only test cases matching the regular expression")
	testCommand.Flags().BoolVarP(&testParams.watch, "watch", "w", false, "watch command line files for changes")
	addOutputFormat(testCommand.Flags(), testParams.outputFormat)
	addCountFlag(testCommand.Flags(), &testParams.count, "test")
	addIgnoreFlag(testCommand.Flags(), &testParams.ignore)

	RootCommand.AddCommand(testCommand)
}
