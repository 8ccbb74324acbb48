// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command trainer trains word vectors from a plain-text corpus using
// CBOW or Skip-Gram with Hierarchical Softmax or Negative Sampling.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/grailbio/word2vec/corpusmap"
	"github.com/grailbio/word2vec/iofmt"
	"github.com/grailbio/word2vec/log"
	"github.com/grailbio/word2vec/modelstore"
	"github.com/grailbio/word2vec/train"
	"github.com/grailbio/word2vec/vocab"
)

const (
	exitUsage = 1
	exitTrain = 2
	exitSave  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)

	trainFile := fs.String("train-file", "", "path to the training corpus (also -f)")
	fs.StringVar(trainFile, "f", "", "shorthand for -train-file")
	modelFile := fs.String("model-file", "", "path to write the trained word model (also -o)")
	fs.StringVar(modelFile, "o", "", "shorthand for -model-file")
	stopWordsFile := fs.String("stop-words-file", "", "path to a stop-words file (also -x)")
	fs.StringVar(stopWordsFile, "x", "", "shorthand for -stop-words-file")
	size := fs.Int("size", 100, "word vector dimensionality (also -s)")
	fs.IntVar(size, "s", 100, "shorthand for -size")
	window := fs.Int("window", 5, "context window size (also -w)")
	fs.IntVar(window, "w", 5, "shorthand for -window")
	sample := fs.Float64("sample", 1e-3, "down-sampling threshold for frequent words (also -l)")
	fs.Float64Var(sample, "l", 1e-3, "shorthand for -sample")
	withHS := fs.Bool("with-hs", false, "use Hierarchical Softmax (also -h)")
	fs.BoolVar(withHS, "h", false, "shorthand for -with-hs")
	negative := fs.Int("negative", 5, "number of negative samples, 0 disables Negative Sampling (also -n)")
	fs.IntVar(negative, "n", 5, "shorthand for -negative")
	threads := fs.Int("threads", 12, "number of worker threads (also -t)")
	fs.IntVar(threads, "t", 12, "shorthand for -threads")
	iter := fs.Int("iter", 5, "number of training epochs (also -i)")
	fs.IntVar(iter, "i", 5, "shorthand for -iter")
	minWordFreq := fs.Uint64("min-word-freq", 5, "minimum word frequency to retain (also -m)")
	fs.Uint64Var(minWordFreq, "m", 5, "shorthand for -min-word-freq")
	alpha := fs.Float64("alpha", 0.05, "initial learning rate (also -a)")
	fs.Float64Var(alpha, "a", 0.05, "shorthand for -alpha")
	withSkipGram := fs.Bool("with-skip-gram", false, "use Skip-Gram instead of CBOW (also -g)")
	fs.BoolVar(withSkipGram, "g", false, "shorthand for -with-skip-gram")
	wordDelimiters := fs.String("word-delimiters", train.NewSettings().WordDelimiters, "token delimiter characters (also -d)")
	fs.StringVar(wordDelimiters, "d", train.NewSettings().WordDelimiters, "shorthand for -word-delimiters")
	endOfSentence := fs.String("end-of-sentence", train.NewSettings().EndOfSentenceChars, "end-of-sentence delimiter characters (also -e)")
	fs.StringVar(endOfSentence, "e", train.NewSettings().EndOfSentenceChars, "shorthand for -end-of-sentence")
	verbose := fs.Bool("verbose", false, "print progress to stderr (also -v)")
	fs.BoolVar(verbose, "v", false, "shorthand for -verbose")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *trainFile == "" || *modelFile == "" {
		fmt.Fprintln(os.Stderr, "trainer: -train-file and -model-file are required")
		return exitUsage
	}

	progressWriter := iofmt.LineWriter(os.Stderr)
	defer progressWriter.Close()

	// Opening the (potentially huge) memory-mapped corpus and reading
	// the (typically small) stop-words file have no dependency on each
	// other; an errgroup supervises both and surfaces the first error.
	var corpus *corpusmap.Map
	var stopWords []byte
	var g errgroup.Group
	g.Go(func() error {
		c, err := corpusmap.Open(*trainFile, false, 0)
		if err != nil {
			return err
		}
		corpus = c
		return nil
	})
	g.Go(func() error {
		if *stopWordsFile == "" {
			return nil
		}
		b, err := os.ReadFile(*stopWordsFile)
		if err != nil {
			return fmt.Errorf("reading stop-words file: %w", err)
		}
		stopWords = b
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		return exitTrain
	}
	defer corpus.Close()

	var vocabProgress vocab.ProgressCallback
	if *verbose {
		vocabProgress = func(pct float32) {
			fmt.Fprintf(progressWriter, "vocabulary: %.1f%%\n", pct)
		}
	}
	v := vocab.Build(corpus.Data(), stopWords, *wordDelimiters, *endOfSentence, *minWordFreq, vocabProgress, func(size, trainWords, totalWords uint64) {
		log.Info.Printf("vocabulary: %d words, %d trainable, %d total", size, trainWords, totalWords)
	})

	settings := train.NewSettings(
		train.WithVectorSize(*size),
		train.WithWindow(*window),
		train.WithSampleThreshold(float32(*sample)),
		train.WithHierarchicalSoftmax(*withHS),
		train.WithNegativeSamples(*negative),
		train.WithThreads(*threads),
		train.WithIterations(*iter),
		train.WithMinWordFreq(*minWordFreq),
		train.WithInitialAlpha(float32(*alpha)),
		train.WithSkipGram(*withSkipGram),
		train.WithWordDelimiters(*wordDelimiters),
		train.WithEndOfSentenceChars(*endOfSentence),
	)

	var progress train.ProgressFunc
	if *verbose {
		progress = func(alpha, percent float32) {
			fmt.Fprintf(progressWriter, "training: alpha=%.5f %.1f%%\n", alpha, percent)
		}
	}

	vectors, err := train.Run(settings, v, corpus, progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		return exitTrain
	}

	if err := modelstore.SaveWordModel(*modelFile, vectors, *size); err != nil {
		fmt.Fprintf(os.Stderr, "trainer: %v\n", err)
		return exitSave
	}
	return 0
}
