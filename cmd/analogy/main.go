// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command analogy answers word-vector arithmetic queries of the form
// "a - b + c", e.g. "king - man + woman", against a trained word
// model, reporting the nearest neighbors of the resulting vector.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/word2vec/docvec"
	"github.com/grailbio/word2vec/modelstore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("analogy", flag.ContinueOnError)
	modelFile := fs.String("model-file", "", "path to a trained word model")
	amount := fs.Int("amount", 10, "number of nearest neighbors to report")
	minDistance := fs.Float64("min-distance", 0, "minimum similarity to report")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *modelFile == "" || fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analogy -model-file PATH 'king - man + woman'")
		return 1
	}

	m, err := modelstore.LoadWordModel(*modelFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analogy: %v\n", err)
		return 2
	}

	vec, terms, err := evaluate(m, strings.Join(fs.Args(), " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "analogy: %v\n", err)
		return 2
	}

	exclude := make(map[string]bool, len(terms))
	for _, t := range terms {
		exclude[t] = true
	}
	for _, n := range m.NearestToVector(vec, *amount, float32(*minDistance), exclude) {
		fmt.Printf("%s\t%.4f\n", n.Word, n.Distance)
	}
	return 0
}

// evaluate parses an expression of the form "word (+ word | - word)*"
// and returns the resulting composed vector along with every word
// term it referenced, so callers can exclude them from the result.
func evaluate(m *modelstore.WordModel, expr string) (docvec.Vector, []string, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("empty expression")
	}

	lookup := func(word string) (docvec.Vector, error) {
		v, ok := m.Lookup(word)
		if !ok {
			return nil, fmt.Errorf("word %q not in model", word)
		}
		return docvec.Vector(v), nil
	}

	acc, err := lookup(fields[0])
	if err != nil {
		return nil, nil, err
	}
	terms := []string{fields[0]}

	i := 1
	for i < len(fields) {
		op := fields[i]
		if op != "+" && op != "-" {
			return nil, nil, fmt.Errorf("expected + or - before %q", op)
		}
		if i+1 >= len(fields) {
			return nil, nil, fmt.Errorf("dangling operator %q", op)
		}
		term := fields[i+1]
		v, err := lookup(term)
		if err != nil {
			return nil, nil, err
		}
		terms = append(terms, term)
		if op == "+" {
			acc, err = acc.Add(v)
		} else {
			acc, err = acc.Sub(v)
		}
		if err != nil {
			return nil, nil, err
		}
		i += 2
	}
	return acc, terms, nil
}
