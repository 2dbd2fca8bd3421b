// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package repl

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/parsec-go/parsec/grammar"
)

func TestDefineAndEval(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	if err := repl.OneShot("num = digit+"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectOutput(t, buffer.String(), "")
	repl.OneShot(`num "42"`)
	expectOutput(t, buffer.String(), "\"42\"\n")
}

func TestEvalRemaining(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	repl.OneShot(`num "42!"`)
	for _, exp := range []string{"RESULT", "REMAINING", `"42"`, `"!"`} {
		if !strings.Contains(buffer.String(), exp) {
			t.Fatalf("want output to contain %q but got:\n%s", exp, buffer.String())
		}
	}
}

func TestEvalItems(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	repl.OneShot(`sepby(num, ',') "1,22end"`)
	for _, exp := range []string{"ITEMS", `["1","22"]`, `"end"`} {
		if !strings.Contains(buffer.String(), exp) {
			t.Fatalf("want output to contain %q but got:\n%s", exp, buffer.String())
		}
	}
}

func TestEvalJSON(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("json")
	repl.OneShot("num = digit+")
	repl.OneShot(`num "42!"`)

	var result struct {
		Result    string `json:"result"`
		Remaining string `json:"remaining"`
	}
	if err := json.Unmarshal(buffer.Bytes(), &result); err != nil {
		t.Fatalf("unexpected error: %v: %v", err, buffer.String())
	}
	if result.Result != "42" || result.Remaining != "!" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestEvalParseFailure(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")

	// Mismatches are results, not REPL errors.
	if err := repl.OneShot(`num "abc"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, exp := range []string{"1 error occurred", "but got 'a'"} {
		if !strings.Contains(buffer.String(), exp) {
			t.Fatalf("want output to contain %q but got:\n%s", exp, buffer.String())
		}
	}
}

func TestEvalCompileError(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	err := repl.OneShot(`nmu "1"`)
	if err == nil || !strings.Contains(err.Error(), "did you mean num?") {
		t.Fatalf("want suggestion error but got: %v", err)
	}
	expectOutput(t, buffer.String(), "")
}

func TestEvalBadInput(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	err := repl.OneShot("digit 5")
	if err == nil || !strings.Contains(err.Error(), "expected quoted input") {
		t.Fatalf("want quoted input error but got: %v", err)
	}
}

func TestPrintCompiled(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("digit*")
	expectOutput(t, buffer.String(), "digit*\n")
}

func TestShow(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	repl.OneShot("word = alpha+")
	repl.OneShot("show")
	expectOutput(t, buffer.String(), "num = digit+\nword = alpha+\n")

	buffer.Reset()
	repl.OneShot("show num")
	expectOutput(t, buffer.String(), "num = digit+\n")

	buffer.Reset()
	repl.OneShot("show missing")
	expectOutput(t, buffer.String(), "warning: no matching rule\n")
}

func TestRedefine(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	repl.OneShot("num = alpha+")
	repl.OneShot(`num "ab1"`)
	if !strings.Contains(buffer.String(), `"ab"`) {
		t.Fatalf("want the redefinition to win but got:\n%s", buffer.String())
	}
}

func TestUnset(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")
	repl.OneShot("unset num")
	expectOutput(t, buffer.String(), "")

	err := repl.OneShot(`num "4"`)
	if err == nil || !strings.Contains(err.Error(), "num undefined") {
		t.Fatalf("want undefined error but got: %v", err)
	}

	buffer.Reset()
	repl.OneShot("unset num")
	expectOutput(t, buffer.String(), "warning: no matching rule\n")

	err = repl.OneShot("unset")
	replErr, ok := err.(*Error)
	if !ok || replErr.Code != BadArgsErr {
		t.Fatalf("want bad args error but got: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("metrics")
	repl.OneShot(`digit "5"`)
	if !strings.Contains(buffer.String(), "timer_parse_eval_ns") {
		t.Fatalf("want metrics in output but got:\n%s", buffer.String())
	}

	buffer.Reset()
	repl.OneShot("metrics")
	repl.OneShot(`digit "5"`)
	if strings.Contains(buffer.String(), "timer_parse_eval_ns") {
		t.Fatalf("want metrics toggled off but got:\n%s", buffer.String())
	}
}

func TestExit(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	err := repl.OneShot("exit")
	if _, ok := err.(stop); !ok {
		t.Fatalf("want stop but got: %v", err)
	}
}

func TestHelp(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("help")
	for _, exp := range []string{"Examples", "Commands", "unset"} {
		if !strings.Contains(buffer.String(), exp) {
			t.Fatalf("want help to contain %q but got:\n%s", exp, buffer.String())
		}
	}
}

func TestBlankLine(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	if err := repl.OneShot("   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectOutput(t, buffer.String(), "")
}

func TestComplete(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)
	repl.OneShot("num = digit+")

	if c := repl.complete("nu"); !slices.Contains(c, "num") {
		t.Fatalf("want num completion but got: %v", c)
	}
	if c := repl.complete("digi"); !slices.Contains(c, "digit") {
		t.Fatalf("want digit completion but got: %v", c)
	}
	if c := repl.complete("sho"); !slices.Contains(c, "show") {
		t.Fatalf("want show completion but got: %v", c)
	}
}

func TestSetRules(t *testing.T) {
	var buffer bytes.Buffer
	repl := newRepl(&buffer)

	rules, err := grammar.ParseRules("test.g", "num = digit+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repl.SetRules(rules)
	repl.OneShot(`num "7"`)
	expectOutput(t, buffer.String(), "\"7\"\n")
}

func expectOutput(t *testing.T, output string, expected string) {
	t.Helper()
	if output != expected {
		t.Errorf("Repl output: expected %#v but got %#v", expected, output)
	}
}

func newRepl(buffer *bytes.Buffer) *REPL {
	return New(grammar.NewRules(), "", buffer, "", "")
}
