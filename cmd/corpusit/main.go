// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/corpusit"
	"github.com/poiesic/corpusit/ai"
	"github.com/poiesic/corpusit/chunking"
	"github.com/poiesic/corpusit/extract"
	"github.com/poiesic/corpusit/ingest"
	"github.com/poiesic/corpusit/retry"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "corpusit",
		Usage: "Document ingestion and retrieval for LLM corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import documents (files or directories) into the corpus",
				ArgsUsage: "PATH [PATH...]",
				Action:    importCommand,
				Flags: append(corpusFlags(),
					&cli.IntFlag{
						Name:  "panel-tokens",
						Usage: "Token size of one generation window",
						Value: 2000,
					},
					&cli.IntFlag{
						Name:  "overlap-tokens",
						Usage: "Tokens shared between consecutive windows",
						Value: 400,
					},
					&cli.IntFlag{
						Name:  "single-window-tokens",
						Usage: "Documents at or under this budget are chunked in one request",
						Value: 3000,
					},
					&cli.IntFlag{
						Name:  "tokens-per-minute",
						Usage: "Shared AI token budget per minute (0 disables rate limiting)",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for throttled AI calls",
						Value: 6,
					},
					&cli.DurationFlag{
						Name:  "retry-base-delay",
						Usage: "First exponential backoff delay",
						Value: 1500 * time.Millisecond,
					},
					&cli.DurationFlag{
						Name:  "embed-delay",
						Usage: "Fixed pause between consecutive embedding requests",
					},
					&cli.StringFlag{
						Name:  "trace-dir",
						Usage: "Directory for per-document audit trace files",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the corpus for chunks similar to a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(corpusFlags(),
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum similarity score for results",
						Value: 0.5,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List imported documents",
				Action: listCommand,
				Flags:  corpusFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Remove a document's chunks from the corpus",
				ArgsUsage: "PATH",
				Action:    deleteCommand,
				Flags:     corpusFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// corpusFlags are shared by every command that opens the corpus.
func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "generation-host",
			Usage: "Chunk generation service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "generation-model",
			Usage: "Chunk generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (defaults to generation-host)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openCorpus(c *cli.Context, extra ...corpusit.CorpusOption) (*corpusit.Corpus, error) {
	embeddingHost := c.String("embedding-host")
	if embeddingHost == "" {
		embeddingHost = c.String("generation-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithGenerationHost(c.String("generation-host")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := append([]corpusit.CorpusOption{corpusit.WithAIConfig(aiConfig)}, extra...)
	return corpusit.Open(c.String("db"), opts...)
}

func importCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file or directory is required")
	}

	paths, err := collectDocuments(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported documents found")
	}

	corpus, err := openCorpus(c,
		corpusit.WithChunkingConfig(chunking.Config{
			PanelTokens:        c.Int("panel-tokens"),
			OverlapTokens:      c.Int("overlap-tokens"),
			SingleWindowTokens: c.Int("single-window-tokens"),
		}),
		corpusit.WithRetryConfig(retry.Config{
			BaseDelay:  c.Duration("retry-base-delay"),
			MaxRetries: c.Int("max-retries"),
		}),
		corpusit.WithTokensPerMinute(c.Int("tokens-per-minute")),
	)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	renderer := &consoleRenderer{out: os.Stderr}
	reporter, err := ingest.NewAsyncReporter(renderer)
	if err != nil {
		return err
	}
	defer reporter.Release()

	pipelineOpts := []ingest.Option{ingest.WithReporter(reporter)}
	if d := c.Duration("embed-delay"); d > 0 {
		pipelineOpts = append(pipelineOpts, ingest.WithEmbedDelay(d))
	}
	if dir := c.String("trace-dir"); dir != "" {
		pipelineOpts = append(pipelineOpts, ingest.WithTraceDir(dir))
	}

	pipeline, err := corpus.NewPipeline(pipelineOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Importing %d document(s) into %s\n\n", len(paths), c.String("db"))
	if err := pipeline.ImportBatch(context.Background(), paths); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query argument is required")
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	results, err := corpus.SearchText(context.Background(),
		c.Args().First(),
		float32(c.Float64("min-similarity")),
		c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s #%d\n", i+1, result.Score, result.Chunk.DocumentPath, result.Chunk.Index)
		fmt.Println(indent(result.Chunk.Content, "   "))
		fmt.Println()
	}
	return nil
}

func listCommand(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	paths, err := corpus.Store().Documents(context.Background())
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Println(path)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document path argument is required")
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	return corpus.Store().DeleteDocument(context.Background(), c.Args().First())
}

// collectDocuments expands directories into their supported files and
// validates explicit file arguments.
func collectDocuments(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if !extract.Supported(arg) {
				return nil, fmt.Errorf("unsupported document type: %s", arg)
			}
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && extract.Supported(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
