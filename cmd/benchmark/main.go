package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tagscope/config"
	"tagscope/internal/adapter/fs"
	"tagscope/internal/adapter/lang"
	"tagscope/internal/domain"
	"tagscope/internal/usecase"
)

func main() {
	projectPath := flag.String("project", ".", "Path to the project")
	tagsPath := flag.String("tags", "", "Tag listing (default: walk the project)")
	runs := flag.Int("n", 3, "Number of builds")
	workers := flag.Int("workers", -1, "Extraction workers (default from config)")
	flag.Parse()

	if *runs < 1 {
		fmt.Println("Usage: go run cmd/benchmark/main.go -project ./src -tags ./src/tags -n 5")
		fmt.Println("\nReports:")
		fmt.Println("  1. Build time per run")
		fmt.Println("  2. Whether repeated builds produce identical indexes")
		fmt.Println("  3. How many type references resolve")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *workers >= 0 {
		cfg.Index.Workers = *workers
	}

	extra := make(map[string]lang.Patterns, len(cfg.Languages))
	for key, l := range cfg.Languages {
		extra[key] = lang.Patterns(l)
	}
	builder := usecase.NewIndexUseCase(
		lang.NewRegistry(extra),
		fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes),
		cfg.Index.Workers,
	)

	fmt.Println("BUILD BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Project: %s\n", *projectPath)
	if *tagsPath != "" {
		fmt.Printf("Listing: %s\n", *tagsPath)
	}
	fmt.Printf("Workers: %d (0 = one per CPU)\n\n", cfg.Index.Workers)

	var durations []time.Duration
	var first []byte
	var last *domain.ProjectIndex
	identical := true
	for i := 0; i < *runs; i++ {
		start := time.Now()
		idx, err := builder.Build(context.Background(), *projectPath, *tagsPath, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Build error: %v\n", err)
			os.Exit(1)
		}
		d := time.Since(start)
		durations = append(durations, d)
		fmt.Printf("Run %d: %s (%d files)\n", i+1, d.Round(time.Millisecond), len(idx.Files))

		data, err := json.Marshal(usecase.ExportIndex(idx))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			os.Exit(1)
		}
		if first == nil {
			first = data
		} else if !bytes.Equal(first, data) {
			identical = false
		}
		last = idx
	}

	fastest, slowest, total := durations[0], durations[0], time.Duration(0)
	for _, d := range durations {
		if d < fastest {
			fastest = d
		}
		if d > slowest {
			slowest = d
		}
		total += d
	}

	var resolved, primitive, unresolved int
	for _, fa := range last.Analyses {
		for _, tag := range fa.Tags {
			for _, ref := range tag.Refs() {
				switch {
				case ref.Name == "":
				case ref.State == domain.ResolvedDefinition:
					resolved++
				case ref.State == domain.ResolvedPrimitive:
					primitive++
				default:
					unresolved++
				}
			}
		}
	}
	refs := resolved + primitive + unresolved

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("TIMING:\n")
	fmt.Printf("  Min: %s  Avg: %s  Max: %s\n",
		fastest.Round(time.Millisecond),
		(total / time.Duration(len(durations))).Round(time.Millisecond),
		slowest.Round(time.Millisecond))

	fmt.Printf("\nRESOLUTION:\n")
	fmt.Printf("  Definitions: %d\n", resolved)
	fmt.Printf("  Primitives:  %d\n", primitive)
	fmt.Printf("  Unresolved:  %d\n", unresolved)
	if refs > 0 {
		rate := float64(resolved+primitive) / float64(refs)
		fmt.Printf("  Rate:        %.1f%%\n", rate*100)
	}
	fmt.Printf("  Errors:      %d\n", len(last.Errors))

	if identical {
		fmt.Println("\n  Status: DETERMINISTIC - every run produced the same index")
	} else {
		fmt.Println("\n  Status: MISMATCH - runs produced different indexes")
		os.Exit(2)
	}
}
