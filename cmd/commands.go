// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd contains the parsec command line tool.
package cmd

import (
	"os"
	"path"

	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "Parsec",
	Long:  "A combinator-based parsing engine with a grammar language, interactive shell, and fixture test runner.",
}
