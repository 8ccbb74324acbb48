// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command distance reports the RMS-dot similarity between two words
// in a trained word model, or the amount nearest neighbors of a
// single word.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/word2vec/modelstore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("distance", flag.ContinueOnError)
	modelFile := fs.String("model-file", "", "path to a trained word model")
	amount := fs.Int("amount", 10, "number of nearest neighbors to report when a single word is given")
	minDistance := fs.Float64("min-distance", 0, "minimum similarity to report")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *modelFile == "" {
		fmt.Fprintln(os.Stderr, "distance: -model-file is required")
		return 1
	}

	m, err := modelstore.LoadWordModel(*modelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "distance: %v\n", err)
		return 2
	}

	switch fs.NArg() {
	case 1:
		for _, n := range m.Nearest(fs.Arg(0), *amount, float32(*minDistance)) {
			fmt.Printf("%s\t%.4f\n", n.Word, n.Distance)
		}
	case 2:
		d, ok := m.Distance(fs.Arg(0), fs.Arg(1))
		if !ok {
			fmt.Fprintln(os.Stderr, "distance: one or both words not in model")
			return 2
		}
		fmt.Printf("%.4f\n", d)
	default:
		fmt.Fprintln(os.Stderr, "usage: distance -model-file PATH word [word2]")
		return 1
	}
	return 0
}
