// Package main generates random inputs from ANTLR4 grammar files.
package main

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/synfuzz/synfuzz"
	"github.com/synfuzz/synfuzz/antlr"
	"github.com/synfuzz/synfuzz/grammar"
)

var version = "dev"

type CLI struct {
	Version kong.VersionFlag `help:"Show version."`
	Config  kong.ConfigFlag  `help:"TOML file supplying flag defaults."`

	Grammar []string `arg:"" required:"" type:"existingfile" help:"ANTLR4 grammar files (.g4). Split lexer and parser grammars are merged."`

	Rule      string `short:"r" help:"Rule to generate from. Defaults to the first parser rule."`
	Count     int    `short:"n" default:"1" help:"Number of samples to generate."`
	Jobs      int    `short:"j" help:"Samples generated in parallel (default number of CPUs)."`
	Negate    bool   `help:"Generate inputs the rule should reject."`
	Seed      int64  `help:"Seed for reproducible output. Sample i uses seed+i. Zero picks a seed from the clock."`
	MaxRepeat int    `default:"${max_repeat}" help:"Exclusive upper bound on repetitions."`
	MaxDepth  int    `default:"${max_depth}" help:"Maximum nesting of rule references."`
	MaxSize   int    `default:"${max_size}" help:"Maximum sample size in bytes (0 disables)."`
	Separator string `default:"${newline}" help:"Written after each sample."`
	Trace     bool   `help:"Trace compilation and generation to stderr."`
	Dump      bool   `help:"Dump the parsed grammar and exit."`
	List      bool   `help:"List rule names and exit."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Description(`Generate random inputs from ANTLR4 grammars.`),
		kong.UsageOnError(),
		kong.Configuration(TOML),
		vars(),
	)
	err := cli.Run(kctx.Stdout, kctx.Stderr)
	kctx.FatalIfErrorf(err)
}

func vars() kong.Vars {
	return kong.Vars{
		"version":    version,
		"newline":    "\n",
		"max_repeat": fmt.Sprint(synfuzz.DefaultMaxRepeat),
		"max_depth":  fmt.Sprint(synfuzz.DefaultMaxDepth),
		"max_size":   fmt.Sprint(synfuzz.DefaultMaxSize),
	}
}

// Run loads the grammars and writes the requested output to stdout.
// Failed samples are reported to stderr and counted in the returned error.
func (c *CLI) Run(stdout, stderr io.Writer) error {
	g, err := antlr.ParseFiles(c.Grammar...)
	if err != nil {
		return err
	}
	if c.Dump {
		repr.New(stdout, repr.Indent("  "), repr.OmitEmpty(true)).Println(g)
		return nil
	}

	var compileOpts []antlr.Option
	if c.Trace {
		compileOpts = append(compileOpts, antlr.Trace(stderr))
	}
	reg := synfuzz.NewRegistry()
	if err := antlr.Compile(reg, g, compileOpts...); err != nil {
		return err
	}
	if c.List {
		for _, name := range reg.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	rule := c.Rule
	if rule == "" {
		rule = startRule(g)
	}
	if rule == "" {
		return fmt.Errorf("grammar %s has no rules", g.Name)
	}
	if _, err := reg.Lookup(rule); err != nil {
		return err
	}

	samples := c.generate(reg, rule, stderr)
	failed := 0
	for i, s := range samples {
		if s.err != nil {
			failed++
			color.New(color.FgRed).Fprintf(stderr, "sample %d: %s\n", i, s.err)
			continue
		}
		if _, err := fmt.Fprintf(stdout, "%s%s", s.data, c.Separator); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d samples failed", failed, len(samples))
	}
	return nil
}

// startRule picks the first parser rule, falling back to the first lexer rule.
func startRule(g *grammar.Grammar) string {
	fallback := ""
	for _, r := range g.Rules {
		switch r.Type {
		case grammar.Parser:
			return r.Name
		case grammar.Lexer:
			if fallback == "" {
				fallback = r.Name
			}
		}
	}
	return fallback
}

type sample struct {
	data []byte
	err  error
}

func (c *CLI) generate(reg *synfuzz.Registry, rule string, stderr io.Writer) []sample {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	jobs := c.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	if c.Trace {
		jobs = 1
	}

	samples := make([]sample, max(c.Count, 0))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range samples {
		i := i
		// Failures are recorded per sample, so workers never return an error.
		g.Go(func() error {
			samples[i] = c.sample(reg, rule, seed+int64(i), stderr)
			return nil
		})
	}
	_ = g.Wait()
	return samples
}

func (c *CLI) sample(reg *synfuzz.Registry, rule string, seed int64, stderr io.Writer) sample {
	options := []synfuzz.Option{
		synfuzz.Seed(seed),
		synfuzz.MaxRepeat(c.MaxRepeat),
		synfuzz.MaxDepth(c.MaxDepth),
		synfuzz.MaxSize(c.MaxSize),
	}
	if c.Trace {
		options = append(options, synfuzz.Trace(stderr))
	}
	f, err := reg.Fuzzer(rule, options...)
	if err != nil {
		return sample{err: err}
	}
	var out []byte
	if c.Negate {
		out, err = f.Negate()
	} else {
		out, err = f.Generate()
	}
	return sample{data: bytes.Clone(out), err: err}
}
