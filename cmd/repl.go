// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"

	"github.com/parsec-go/parsec/cmd/formats"
	"github.com/parsec-go/parsec/cmd/internal/env"
	"github.com/parsec-go/parsec/grammar"
	"github.com/parsec-go/parsec/internal/filewatcher"
	internal_logging "github.com/parsec-go/parsec/internal/logging"
	"github.com/parsec-go/parsec/logging"
	"github.com/parsec-go/parsec/repl"
	"github.com/parsec-go/parsec/util"
	"github.com/parsec-go/parsec/version"
)

const defaultHistoryFile = ".parsec_history"

type replCommandParams struct {
	historyPath  string
	outputFormat *util.EnumFlag
	watch        bool
	logLevel     *util.EnumFlag
	logFormat    *util.EnumFlag
}

func newReplCommandParams() replCommandParams {
	return replCommandParams{
		outputFormat: formats.Flag(formats.Pretty, formats.JSON),
		logLevel:     util.NewEnumFlag("info", []string{"debug", "info", "error"}),
		logFormat:    util.NewEnumFlag("json", []string{"text", "json", "json-pretty"}),
	}
}

func init() {

	params := newReplCommandParams()

	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Long: `Start the parsec interactive shell.

The shell can be initialized with one or more grammar files:

	$ parsec repl nums.g

Users can then define rules and run parsers interactively:

	> word = alpha+
	> word "hi there"

Run 'help' inside the shell to see a list of commands.
`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.CmdFlags.CheckEnvironmentVariables(cmd)
		},
		Run: func(_ *cobra.Command, args []string) {
			os.Exit(startRepl(args, &params))
		},
	}

	replCommand.Flags().StringVarP(&params.historyPath, "history", "H", historyPath(), "set path of history file")
	replCommand.Flags().VarP(params.outputFormat, "format", "f", "set shell output format, i.e, pretty, json")
	replCommand.Flags().BoolVarP(&params.watch, "watch", "w", false, "watch command line files for changes")
	replCommand.Flags().VarP(params.logLevel, "log-level", "l", "set log level")
	replCommand.Flags().VarP(params.logFormat, "log-format", "", "set log format")

	usageTemplate := `Usage:
  {{.UseLine}} [flags] [files]

Flags:
{{.LocalFlags.FlagUsages | trimRightSpace}}
`

	replCommand.SetUsageTemplate(usageTemplate)

	RootCommand.AddCommand(replCommand)
}

func startRepl(args []string, params *replCommandParams) int {
	ctx := context.Background()

	var rules *grammar.Rules
	if len(args) > 0 {
		loaded, err := grammar.LoadRules(args...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		rules = loaded
	}

	r := repl.New(rules, params.historyPath, os.Stdout, params.outputFormat.String(), banner())

	if params.watch {
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "error: --watch requires at least one rules file")
			return 1
		}
		watcher := filewatcher.NewFileWatcher(args, onReloadPrinter(r, os.Stdout), replLogger(params))
		if err := watcher.Start(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		defer watcher.Stop()
	}

	r.Loop()
	return 0
}

// onReloadPrinter swaps the freshly loaded rules into the shell and notes
// the reload in the output, mid-prompt.
func onReloadPrinter(r *repl.REPL, output io.Writer) filewatcher.OnReload {
	return func(_ context.Context, took time.Duration, rules *grammar.Rules, err error) {
		if err != nil {
			fmt.Fprintf(output, "\n# reload error (took %v): %v\n", took, err)
			return
		}
		r.SetRules(rules)
		fmt.Fprintf(output, "\n# reloaded files (took %v)\n", took)
	}
}

func replLogger(params *replCommandParams) logging.Logger {
	logger := logging.New()
	// The enum flag has already vetted the level string.
	level, _ := internal_logging.GetLevel(params.logLevel.String())
	logger.SetLevel(level)
	logger.SetFormatter(internal_logging.GetFormatter(params.logFormat.String(), ""))
	return logger
}

func banner() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "parsec %v (commit %v, built at %v)\n", version.Version, version.Vcs, version.Timestamp)
	fmt.Fprintf(&buf, "\nRun 'help' to see a list of commands.\n")
	return buf.String()
}

func historyPath() string {
	home := os.Getenv("HOME")
	if len(home) == 0 {
		return defaultHistoryFile
	}
	return path.Join(home, defaultHistoryFile)
}
