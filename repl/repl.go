// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package repl implements a Read-Eval-Print-Loop (REPL) for interacting with
// the parsing engine.
//
// The REPL is typically used from the command line, however, it can also be
// used as a library.
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/peterh/liner"

	"github.com/parsec-go/parsec/grammar"
	"github.com/parsec-go/parsec/internal/presentation"
	"github.com/parsec-go/parsec/metrics"
	"github.com/parsec-go/parsec/parser"
)

// REPL represents an instance of the interactive shell.
type REPL struct {
	output io.Writer
	rules  *grammar.Rules

	outputFormat string
	showMetrics  bool
	historyPath  string
	initPrompt   string
	banner       string

	// mtx guards rules, which a file watcher may replace mid-session.
	mtx sync.Mutex
}

// New returns a new instance of the REPL.
func New(rules *grammar.Rules, historyPath string, output io.Writer, outputFormat string, banner string) *REPL {

	if rules == nil {
		rules = grammar.NewRules()
	}

	return &REPL{
		output:       output,
		rules:        rules,
		outputFormat: outputFormat,
		historyPath:  historyPath,
		initPrompt:   "> ",
		banner:       banner,
	}
}

// Loop will run until the user enters "exit", Ctrl+C, Ctrl+D, or an
// unexpected error occurs.
func (r *REPL) Loop() {

	// Initialize the liner library.
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	r.loadHistory(line)

	if len(r.banner) > 0 {
		fmt.Fprintln(r.output, r.banner)
	}

	line.SetCompleter(r.complete)

loop:
	for {

		input, err := line.Prompt(r.initPrompt)

		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(r.output, "Exiting")
			break
		}

		if err != nil {
			fmt.Fprintln(r.output, "error (fatal):", err)
			os.Exit(1)
		}

		if err := r.OneShot(input); err != nil {
			switch err.(type) {
			case stop:
				break loop
			default:
				fmt.Fprintln(r.output, "error:", err)
			}
		}

		line.AppendHistory(input)
	}

	r.saveHistory(line)
}

// OneShot evaluates the line and prints the result. If an error occurs it is
// returned for the caller to display.
func (r *REPL) OneShot(line string) error {

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if strings.TrimSpace(line) == "" {
		return nil
	}

	if cmd := newCommand(line); cmd != nil {
		switch cmd.op {
		case "show":
			return r.cmdShow(cmd.args)
		case "unset":
			return r.cmdUnset(cmd.args)
		case "json":
			return r.cmdFormat("json")
		case "pretty":
			return r.cmdFormat("pretty")
		case "metrics":
			return r.cmdMetrics()
		case "help":
			return r.cmdHelp()
		case "exit":
			return r.cmdExit()
		}
	}

	if name, src, ok := splitDefinition(line); ok {
		_, err := r.rules.Define(name, src)
		return err
	}

	return r.evalLine(line)
}

// SetRules replaces the definitions lines are compiled against. It is safe
// to call while the loop is running, e.g. from a file watcher reload.
func (r *REPL) SetRules(rules *grammar.Rules) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.rules = rules
}

func (r *REPL) complete(line string) (c []string) {

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, name := range r.rules.Names() {
		if strings.HasPrefix(name, line) {
			c = append(c, name)
		}
	}

	for _, name := range grammar.Builtins() {
		if strings.HasPrefix(name, line) {
			c = append(c, name)
		}
	}

	for _, cmd := range builtin {
		if strings.HasPrefix(cmd.name, line) {
			c = append(c, cmd.name)
		}
	}

	return c
}

func (r *REPL) cmdShow(args []string) error {

	if len(args) > 1 {
		return newBadArgsErr("show [name]: expects at most one argument")
	}

	if len(args) == 1 {
		src, ok := r.rules.Source(args[0])
		if !ok {
			fmt.Fprintln(r.output, "warning: no matching rule")
			return nil
		}
		fmt.Fprintf(r.output, "%v = %v\n", args[0], src)
		return nil
	}

	for _, name := range r.rules.Names() {
		src, _ := r.rules.Source(name)
		fmt.Fprintf(r.output, "%v = %v\n", name, src)
	}

	return nil
}

func (r *REPL) cmdUnset(args []string) error {

	if len(args) != 1 {
		return newBadArgsErr("unset <name>: expects exactly one argument")
	}

	if !r.rules.Unset(args[0]) {
		fmt.Fprintln(r.output, "warning: no matching rule")
	}

	return nil
}

func (r *REPL) cmdFormat(s string) error {
	r.outputFormat = s
	return nil
}

func (r *REPL) cmdMetrics() error {
	r.showMetrics = !r.showMetrics
	return nil
}

func (r *REPL) cmdHelp() error {
	fmt.Fprintln(r.output, "")
	printHelpExamples(r.output, r.initPrompt)
	printHelpCommands(r.output)
	return nil
}

func (r *REPL) cmdExit() error {
	return stop{}
}

// evalLine handles the expression forms: a bare expression prints its
// compiled form, an expression followed by a quoted string runs the parser
// against that input.
func (r *REPL) evalLine(line string) error {

	p, rest, err := r.rules.CompilePrefix(line)
	if err != nil {
		return err
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		fmt.Fprintln(r.output, p)
		return nil
	}

	input, err := strconv.Unquote(rest)
	if err != nil {
		return fmt.Errorf("expected quoted input after expression but got %v", rest)
	}

	return r.evalParse(p, input)
}

func (r *REPL) evalParse(p parser.Parser, input string) error {

	var output presentation.Output

	var m metrics.Metrics
	if r.showMetrics {
		m = metrics.New()
		m.Timer(metrics.ParseEval).Start()
	}

	var err error
	if parser.YieldsItems(p) {
		var items []string
		var remaining string
		items, remaining, err = parser.ParseItems(p, input)
		if err == nil {
			matched := strings.TrimSuffix(input, remaining)
			output.Result = &matched
			output.Remaining = &remaining
			output.Items = items
		}
	} else {
		var matched, remaining string
		matched, remaining, err = p.Parse(input)
		if err == nil {
			output.Result = &matched
			output.Remaining = &remaining
		}
	}

	if r.showMetrics {
		m.Timer(metrics.ParseEval).Stop()
		output.Metrics = m
	}

	if err != nil {
		output.Errors = presentation.NewOutputErrors(err)
	}

	switch r.outputFormat {
	case "json":
		return presentation.JSON(r.output, output)
	default:
		return presentation.Pretty(r.output, output)
	}
}

func (r *REPL) loadHistory(prompt *liner.State) {
	if f, err := os.Open(r.historyPath); err == nil {
		prompt.ReadHistory(f)
		f.Close()
	}
}

func (r *REPL) saveHistory(prompt *liner.State) {
	if f, err := os.Create(r.historyPath); err == nil {
		prompt.WriteHistory(f)
		f.Close()
	}
}

// splitDefinition recognizes the "name = expression" form. Lines whose left
// hand side is not a plain name fall through to expression evaluation.
func splitDefinition(line string) (string, string, bool) {

	name, src, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	name = strings.TrimSpace(name)
	if !isName(name) {
		return "", "", false
	}

	return name, src, true
}

func isName(s string) bool {
	for i := range len(s) {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_':
		case i > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return s != ""
}

type commandDesc struct {
	name string
	args []string
	help string
}

func (c commandDesc) syntax() string {
	if len(c.args) > 0 {
		return fmt.Sprintf("%v %v", c.name, strings.Join(c.args, " "))
	}
	return c.name
}

type exampleDesc struct {
	example string
	comment string
}

var examples = [...]exampleDesc{
	{`num = digit+`, "define a rule"},
	{`num "42!"`, "run a parser against input"},
	{`sepby(num, ',') "1,22"`, "evaluate an expression inline"},
}

var extra = [...]commandDesc{
	{"<name> = <expr>", []string{}, "define a rule"},
	{"<expr> <input>", []string{}, "run a parser against a quoted input"},
	{"<expr>", []string{}, "print the compiled form of an expression"},
}

var builtin = [...]commandDesc{
	{"show", []string{"[name]"}, "show rule definitions"},
	{"unset", []string{"<name>"}, "undefine a rule"},
	{"json", []string{}, "set output format to JSON"},
	{"pretty", []string{}, "set output format to pretty"},
	{"metrics", []string{}, "toggle metrics display"},
	{"help", []string{}, "print this message"},
	{"exit", []string{}, "exit back to shell (or ctrl+c, ctrl+d)"},
	{"ctrl+l", []string{}, "clear the screen"},
}

type command struct {
	op   string
	args []string
}

func newCommand(line string) *command {
	p := strings.Fields(strings.TrimSpace(line))
	if len(p) == 0 {
		return nil
	}
	op := strings.ToLower(p[0])
	for _, c := range builtin {
		if c.name == op {
			return &command{
				op:   c.name,
				args: p[1:],
			}
		}
	}
	return nil
}

func printHelpExamples(output io.Writer, promptSymbol string) {

	fmt.Fprintln(output, "Examples")
	fmt.Fprintln(output, "========")
	fmt.Fprintln(output, "")

	maxLength := 0
	for _, ex := range examples {
		if len(ex.example) > maxLength {
			maxLength = len(ex.example)
		}
	}

	f := fmt.Sprintf("%v%%-%dv # %%v\n", promptSymbol, maxLength+1)

	for _, ex := range examples {
		fmt.Fprintf(output, f, ex.example, ex.comment)
	}

	fmt.Fprintln(output, "")
}

func printHelpCommands(output io.Writer) {

	fmt.Fprintln(output, "Commands")
	fmt.Fprintln(output, "========")
	fmt.Fprintln(output, "")

	all := extra[:]
	all = append(all, builtin[:]...)

	maxLength := 0

	for _, c := range all {
		length := len(c.syntax())
		if length > maxLength {
			maxLength = length
		}
	}

	f := fmt.Sprintf("%%%dv : %%v\n", maxLength)

	for _, c := range all {
		fmt.Fprintf(output, f, c.syntax(), c.help)
	}

	fmt.Fprintln(output, "")
}
