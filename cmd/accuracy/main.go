// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command accuracy scores a trained word model against a file of
// analogy questions ("word1 word2 word3 word4" quadruples, grouped
// into named sections introduced by a ": section name" line), the
// way the reference word2vec tool's accuracy test does: for each
// question it composes word2 - word1 + word3 and checks how far down
// the model's full nearest-neighbor ranking word4 appears.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/grailbio/word2vec/docvec"
	"github.com/grailbio/word2vec/modelstore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("accuracy", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s model-file analogies-file\n", fs.Name())
		return 1
	}

	m, err := modelstore.LoadWordModel(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "accuracy: %v\n", err)
		return 2
	}

	f, err := os.Open(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "accuracy: %v\n", err)
		return 2
	}
	defer f.Close()

	score(m, f, os.Stdout)
	return 0
}

// score reads quadruples from r and writes per-section and overall
// RMS accuracy to w, following the reference tool's scoring formula:
// each question's accuracy is 1 - (pos/modelSize)^2, where pos is the
// rank (0-based, excluding the three input words) at which word4
// first appears in the model's full nearest-neighbor list for
// word2 - word1 + word3; pos defaults to modelSize when word4 never
// appears, or when any of the four words is out of vocabulary.
func score(m *modelstore.WordModel, r io.Reader, w io.Writer) {
	modelSize := len(m.Vectors())

	var modelAcc, sectionAcc float64
	var testSets, sectionSets int

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == ":" {
			if sectionSets > 0 {
				fmt.Fprintf(w, "section accuracy: %.4f\n", math.Sqrt(sectionAcc/float64(sectionSets)))
			}
			sectionAcc, sectionSets = 0, 0
			fmt.Fprintln(w, strings.TrimSpace(strings.TrimPrefix(line, ":")))
			continue
		}
		if len(fields) < 4 {
			continue
		}
		word1 := strings.ToLower(fields[0])
		word2 := strings.ToLower(fields[1])
		word3 := strings.ToLower(fields[2])
		word4 := strings.ToLower(fields[3])

		pos := modelSize
		if v2, ok := m.Lookup(word2); ok {
			if v1, ok := m.Lookup(word1); ok {
				if v3, ok := m.Lookup(word3); ok {
					vec, err := docvec.Vector(v2).Sub(docvec.Vector(v1))
					if err == nil {
						vec, err = vec.Add(docvec.Vector(v3))
					}
					if err == nil {
						exclude := map[string]bool{word1: true, word2: true, word3: true}
						for idx, n := range m.NearestToVector(vec, modelSize, -1, exclude) {
							if n.Word == word4 {
								pos = idx
								break
							}
						}
					}
				}
			}
		}

		accuracy := 1.0 - float64(pos*pos)/float64(modelSize*modelSize)
		modelAcc += accuracy * accuracy
		sectionAcc += accuracy * accuracy
		testSets++
		sectionSets++
	}

	if sectionSets > 0 {
		fmt.Fprintf(w, "section accuracy: %.4f\n", math.Sqrt(sectionAcc/float64(sectionSets)))
	}
	if testSets > 0 {
		fmt.Fprintf(w, "Model accuracy: %.4f\n", math.Sqrt(modelAcc/float64(testSets)))
	}
}
