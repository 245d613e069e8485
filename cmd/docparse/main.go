// Command docparse parses one tax document from disk and prints the typed
// record plus run metadata as JSON. It is the command-line face of the
// parsing pipeline; all heavy lifting lives under internal/domain.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taxpilot/docparse/internal/domain/canonical"
	"github.com/taxpilot/docparse/internal/domain/extract"
	"github.com/taxpilot/docparse/internal/domain/pipeline"
	"github.com/taxpilot/docparse/pkg/config"
)

type output struct {
	Record    any                 `json:"record"`
	Meta      pipeline.Meta       `json:"meta"`
	Canonical *canonical.Document `json:"canonical,omitempty"`
}

func main() {
	var (
		forcedType  = flag.String("type", "", "force the document type instead of detecting it (e.g. gstr-3b, sales_register)")
		toCanonical = flag.Bool("canonical", false, "also emit the canonical doc.v0.1 form of the record")
		policyPath  = flag.String("policy", "", "bank policy YAML file (overrides BANK_POLICY_PATH)")
		hindi       = flag.Bool("hindi", false, "use Hindi-aware OCR and the Devanagari rule tables for rule-based parsers")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Load()
	if *policyPath != "" {
		cfg.Bank.PolicyPath = *policyPath
	}

	var opts []extract.Option
	if *hindi {
		opts = append(opts, extract.WithHindi())
		cfg.Parse.HindiRules = true
	}

	p, err := pipeline.New(cfg, logger, opts...)
	if err != nil {
		logger.Error("pipeline startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read input file", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}

	record, meta := p.ParseOne(context.Background(), filepath.Base(path), data, *forcedType)

	out := output{Record: record, Meta: meta}
	if *toCanonical {
		out.Canonical = canonical.Normalize(meta.DocTypeInternal, record)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		logger.Error("encode output", slog.Any("error", err))
		os.Exit(1)
	}
}
