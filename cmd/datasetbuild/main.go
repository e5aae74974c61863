package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/coastlineai/sentinel/internal/config"
	"github.com/coastlineai/sentinel/internal/registry"
	"github.com/coastlineai/sentinel/internal/training"
	"github.com/coastlineai/sentinel/pkg/logging"
)

func main() {
	templatesPath := flag.String("templates", "", "path to a JSON array of training.InstructionTemplate")
	promptsPath := flag.String("prompts", "", "path to a JSON array of training.Prompt")
	outputsPath := flag.String("outputs", "", "path to a JSON array of training.Output")
	outPath := flag.String("out", "corpus/dataset.jsonl", "output JSONL path")
	flag.Parse()

	if *templatesPath == "" || *promptsPath == "" || *outputsPath == "" {
		log.Fatal("templates, prompts, and outputs flags are all required")
	}

	var templates []training.InstructionTemplate
	var prompts []training.Prompt
	var outputs []training.Output
	mustDecode(*templatesPath, &templates)
	mustDecode(*promptsPath, &prompts)
	mustDecode(*outputsPath, &outputs)

	composed, err := training.Compose(templates, prompts, outputs)
	if err != nil {
		log.Fatalf("compose: %v", err)
	}
	for _, w := range composed.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	examples := training.Normalize(composed.Examples)

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer dbPool.Close()

	loader := registry.NewPostgresStore(dbPool)
	regStore := registry.NewStore(loader, logger, registry.WithStaleAfter(cfg.VerificationStaleAfter))
	if err := regStore.Load(ctx); err != nil {
		log.Fatalf("load registry: %v", err)
	}

	report := training.Validate(examples, regStore)
	fmt.Printf("examples: %d\n", report.Total)
	fmt.Printf("risk level counts: %v\n", report.RiskLevelCounts)
	fmt.Printf("resource mention rate: %.2f\n", report.ResourceMentionRate)
	fmt.Printf("registered literal rate: %.2f\n", report.RegisteredLiteralRate)
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !report.Passed() {
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "failure: %v\n", f)
		}
		log.Fatalf("validation failed with %d hard failures, refusing to write %s", len(report.Failures), *outPath)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create output file: %v", err)
	}
	defer out.Close()

	if err := training.WriteJSONL(out, examples); err != nil {
		log.Fatalf("write jsonl: %v", err)
	}

	fmt.Printf("wrote %d examples to %s\n", len(examples), *outPath)
}

func mustDecode(path string, v any) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		log.Fatalf("decode %s: %v", path, err)
	}
}
