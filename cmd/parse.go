// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/parsec-go/parsec/cmd/formats"
	"github.com/parsec-go/parsec/cmd/internal/env"
	"github.com/parsec-go/parsec/grammar"
	pr "github.com/parsec-go/parsec/internal/presentation"
	"github.com/parsec-go/parsec/util"
)

type parseParams struct {
	format     *util.EnumFlag
	rulesPaths repeatedStringFlag
}

var configuredParseParams = parseParams{
	format: formats.Flag(formats.Pretty, formats.JSON),
}

var parseCommand = &cobra.Command{
	Use:   "parse <expression>",
	Short: "Parse a grammar expression",
	Long: `Parse a grammar expression and print its compiled form.

The printed form is the canonical rendering of the compiled parser: grouping
reflects how the expression actually binds, and rule references resolve
against the rules loaded with --rules-file and render by name.
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no expression specified")
		}
		if len(args) > 1 {
			return errors.New("specify exactly one expression")
		}
		return env.CmdFlags.CheckEnvironmentVariables(cmd)
	},
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(parseRun(args, &configuredParseParams, os.Stdout, os.Stderr))
	},
}

func parseRun(args []string, params *parseParams, stdout io.Writer, stderr io.Writer) int {
	if len(args) == 0 {
		return 0
	}

	rules := grammar.NewRules()
	if len(params.rulesPaths.v) > 0 {
		loaded, err := grammar.LoadRules(params.rulesPaths.v...)
		if err != nil {
			_ = pr.JSON(stderr, pr.Output{Errors: pr.NewOutputErrors(err)})
			return 1
		}
		rules = loaded
	}

	p, err := rules.Compile(args[0])
	if err != nil {
		_ = pr.JSON(stderr, pr.Output{Errors: pr.NewOutputErrors(err)})
		return 1
	}

	switch params.format.String() {
	case formats.JSON:
		if err := pr.JSON(stdout, p.String()); err != nil {
			_ = pr.JSON(stderr, pr.Output{Errors: pr.NewOutputErrors(err)})
			return 1
		}
	default:
		fmt.Fprintln(stdout, p)
	}

	return 0
}

func init() {
	addOutputFormat(parseCommand.Flags(), configuredParseParams.format)
	parseCommand.Flags().VarP(&configuredParseParams.rulesPaths, "rules-file", "r", "set rules file(s)")

	RootCommand.AddCommand(parseCommand)
}
