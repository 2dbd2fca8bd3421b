// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parsec-go/parsec/cmd/formats"
	"github.com/parsec-go/parsec/cmd/internal/env"
	"github.com/parsec-go/parsec/grammar"
	pr "github.com/parsec-go/parsec/internal/presentation"
	"github.com/parsec-go/parsec/metrics"
	"github.com/parsec-go/parsec/parser"
	"github.com/parsec-go/parsec/util"
)

type evalCommandParams struct {
	grammarExpr  string
	rootParser   string
	rulesPaths   repeatedStringFlag
	inputPath    string
	stdinInput   bool
	metrics      bool
	count        int
	fail         bool
	outputFormat *util.EnumFlag
	prettyLimit  intFlag
}

func newEvalCommandParams() evalCommandParams {
	return evalCommandParams{
		outputFormat: formats.Flag(formats.Pretty, formats.JSON),
		prettyLimit:  newIntFlag(defaultPrettyLimit),
	}
}

const defaultPrettyLimit = 80

type parsecError struct{}

func (parsecError) Error() string {
	return "parsec"
}

func init() {

	params := newEvalCommandParams()

	evalCommand := &cobra.Command{
		Use:   "eval [input]",
		Short: "Run a parser against an input string",
		Long: `Run a parser against an input string and print the result.

The parser is given either as an inline grammar expression with --grammar or
as the name of a rule defined in the files loaded with --rules-file. The
--parser value is itself a grammar expression, so it can reference or combine
loaded rules.

The input string is passed as the single positional argument, read from a
file with --input-file, or read from stdin with --stdin-input. Parsers match
a prefix of the input; the unconsumed remainder is part of the result.

Examples
--------

To run an inline grammar expression:

	$ parsec eval -g 'digit+' '42!'

To run a rule defined in a grammar file:

	$ parsec eval -r nums.g -p csv '1,22,333'

To run a parser combining loaded rules:

	$ parsec eval -r nums.g -p 'sepby(num, ";")' '1;22'

Output Formats
--------------

Set the output format with the --format flag.

	--format=pretty    : output result, remainder, and items in a table
	--format=json      : output parse results as JSON

A parse that consumes the entire input prints as a single value in pretty
mode. Parse failures are reported in the output, not as command errors; use
--fail to exit non-zero when the parse does not succeed.
`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if params.grammarExpr == "" && params.rootParser == "" {
				return errors.New("specify --grammar or --parser")
			}
			if params.grammarExpr != "" && params.rootParser != "" {
				return errors.New("specify --grammar or --parser but not both")
			}
			if params.rootParser != "" && !params.rulesPaths.isFlagSet() {
				return errors.New("specify --rules-file when --parser is used")
			}
			if len(args) > 1 {
				return errors.New("specify at most one input argument")
			}
			if len(args) > 0 && (params.stdinInput || params.inputPath != "") {
				return errors.New("specify input argument, --input-file, or --stdin-input but not more than one")
			}
			if params.stdinInput && params.inputPath != "" {
				return errors.New("specify --stdin-input or --input-file but not both")
			}
			if params.count < 1 {
				return errors.New("--count must be positive")
			}
			return env.CmdFlags.CheckEnvironmentVariables(cmd)
		},
		Run: func(_ *cobra.Command, args []string) {
			parsed, err := eval(args, &params, os.Stdout)
			if err != nil {
				if _, ok := err.(parsecError); !ok {
					fmt.Fprintln(os.Stderr, err)
				}
				os.Exit(2)
			}
			if params.fail && !parsed {
				os.Exit(1)
			}
		},
	}

	evalCommand.Flags().StringVarP(&params.grammarExpr, "grammar", "g", "", "set inline grammar expression")
	evalCommand.Flags().StringVarP(&params.rootParser, "parser", "p", "", "set root parser rule or expression")
	evalCommand.Flags().VarP(&params.rulesPaths, "rules-file", "r", "set rules file(s)")
	evalCommand.Flags().StringVarP(&params.inputPath, "input-file", "i", "", "set input file path")
	evalCommand.Flags().BoolVarP(&params.stdinInput, "stdin-input", "I", false, "read input string from stdin")
	evalCommand.Flags().BoolVarP(&params.metrics, "metrics", "", false, "report grammar load, compile, and parse performance metrics")
	evalCommand.Flags().BoolVarP(&params.fail, "fail", "", false, "exits with non-zero exit code on failed parse and errors")
	evalCommand.Flags().VarP(&params.prettyLimit, "pretty-limit", "", "set limit after which pretty output gets truncated")
	addOutputFormat(evalCommand.Flags(), params.outputFormat)
	addCountFlag(evalCommand.Flags(), &params.count, "evaluation")
	RootCommand.AddCommand(evalCommand)
}

// eval runs the parse and presents the result on w. The returned bool
// reports whether the parse succeeded. Errors that were already presented
// in the output come back as parsecError so callers do not print them
// twice.
func eval(args []string, params *evalCommandParams, w io.Writer) (bool, error) {

	input, err := readInputString(args, params)
	if err != nil {
		return false, err
	}

	var m metrics.Metrics
	if params.metrics {
		m = metrics.New()
	} else {
		m = metrics.NoOp()
	}

	result := pr.Output{}.WithLimit(params.prettyLimit.v)

	p, compileErr := evalParser(params, m)

	parsed := false
	if compileErr != nil {
		result.Errors = pr.NewOutputErrors(compileErr)
	} else {
		splitItems := parser.YieldsItems(p)
		for range params.count {
			out, rest, items, err := runParser(p, input, splitItems, m)
			if err != nil {
				m.Counter(metrics.ParseFailure).Incr()
				result = pr.Output{Errors: pr.NewOutputErrors(err)}.WithLimit(params.prettyLimit.v)
				continue
			}
			m.Counter(metrics.ParseSuccess).Incr()
			result = pr.Output{Result: &out, Remaining: &rest, Items: items}.WithLimit(params.prettyLimit.v)
			parsed = true
		}
	}

	if params.metrics {
		result.Metrics = m
	}

	switch params.outputFormat.String() {
	case formats.JSON:
		err = pr.JSON(w, result)
	default:
		err = pr.Pretty(w, result)
	}

	if err != nil {
		return false, err
	}
	if compileErr != nil {
		// The compile error was presented above; return a special error so
		// that the command doesn't print the same error twice.
		return false, parsecError{}
	}
	return parsed, nil
}

// evalParser loads the rules files and compiles the root expression.
func evalParser(params *evalCommandParams, m metrics.Metrics) (parser.Parser, error) {
	rules := grammar.NewRules()

	if len(params.rulesPaths.v) > 0 {
		m.Timer(metrics.GrammarParse).Start()
		loaded, err := grammar.LoadRules(params.rulesPaths.v...)
		m.Timer(metrics.GrammarParse).Stop()
		if err != nil {
			return parser.Parser{}, err
		}
		rules = loaded
	}

	src := params.grammarExpr
	if params.rootParser != "" {
		src = params.rootParser
	}

	m.Timer(metrics.GrammarCompile).Start()
	p, err := rules.Compile(src)
	m.Timer(metrics.GrammarCompile).Stop()
	return p, err
}

func runParser(p parser.Parser, input string, splitItems bool, m metrics.Metrics) (string, string, []string, error) {
	timer := m.Timer(metrics.ParseEval)
	timer.Start()
	defer timer.Stop()

	if splitItems {
		items, rest, err := parser.ParseItems(p, input)
		if err != nil {
			return "", "", nil, err
		}
		return input[:len(input)-len(rest)], rest, items, nil
	}

	out, rest, err := p.Parse(input)
	if err != nil {
		return "", "", nil, err
	}
	return out, rest, nil, nil
}

func readInputString(args []string, params *evalCommandParams) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if params.stdinInput {
		bs, err := io.ReadAll(os.Stdin)
		return string(bs), err
	}
	if params.inputPath != "" {
		bs, err := os.ReadFile(params.inputPath)
		return string(bs), err
	}
	return "", nil
}

type repeatedStringFlag struct {
	v     []string
	isSet bool
}

func (f *repeatedStringFlag) Type() string {
	return "string"
}

func (f *repeatedStringFlag) String() string {
	return strings.Join(f.v, ",")
}

func (f *repeatedStringFlag) Set(s string) error {
	f.v = append(f.v, s)
	f.isSet = true
	return nil
}

func (f *repeatedStringFlag) isFlagSet() bool {
	return f.isSet
}

type intFlag struct {
	v     int
	isSet bool
}

func newIntFlag(val int) intFlag {
	return intFlag{
		v:     val,
		isSet: false,
	}
}

func (f *intFlag) Type() string {
	return "int"
}

func (f *intFlag) String() string {
	return strconv.Itoa(f.v)
}

func (f *intFlag) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, 64)
	f.v = int(v)
	f.isSet = true
	return err
}
