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
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/askit"
	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/server"
	"github.com/poiesic/askit/vectorindex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "askit",
		Usage:  "Document-grounded question answering service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						Value:   ":8000",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Ingest documents dropped into the documents directory",
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest one stored document and wait for the result",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags:     systemFlags(),
			},
			{
				Name:      "query",
				Usage:     "Ask a question against the indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:  "session",
						Usage: "Conversation session ID",
						Value: "cli",
					},
				),
			},
			{
				Name:   "sources",
				Usage:  "List stored source documents",
				Action: sourcesCommand,
				Flags:  systemFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Remove a source document and its indexed chunks",
				ArgsUsage: "<file>",
				Action:    deleteCommand,
				Flags:     systemFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Data directory for history, index, and documents",
			Value:   "./data",
		},
		&cli.StringFlag{
			Name:  "history-backend",
			Usage: "Conversation history backend (badger, file)",
			Value: askit.HistoryBadger,
		},
		&cli.StringFlag{
			Name:  "index-backend",
			Usage: "Vector index backend (local, qdrant)",
			Value: vectorindex.BackendLocal,
		},
		&cli.StringFlag{
			Name:  "qdrant-host",
			Usage: "Qdrant server host (qdrant backend only)",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "qdrant-port",
			Usage: "Qdrant gRPC port (qdrant backend only)",
			Value: 6334,
		},
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Answer generation model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "converter-url",
			Usage: "External conversion service URL for binary formats",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Chunk window size in characters",
			Value: 3000,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Chunk window overlap in characters",
			Value: 200,
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of chunks retrieved per question",
			Value: 5,
		},
		&cli.DurationFlag{
			Name:  "answer-timeout",
			Usage: "Deadline for retrieval and generation per question",
			Value: 60 * time.Second,
		},
		&cli.StringFlag{
			Name:    "telegram-token",
			Usage:   "Telegram bot token for ingestion notifications",
			EnvVars: []string{"ASKIT_TELEGRAM_TOKEN"},
		},
	}
}

func buildConfig(c *cli.Context) askit.Config {
	dataDir := c.String("data-dir")
	cfg := askit.DefaultConfig(dataDir)

	cfg.HistoryBackend = c.String("history-backend")
	if cfg.HistoryBackend == askit.HistoryFile {
		cfg.HistoryPath = dataDir + "/history.json"
	}

	cfg.Index.Backend = c.String("index-backend")
	cfg.Index.Host = c.String("qdrant-host")
	cfg.Index.Port = c.Int("qdrant-port")

	cfg.ConverterURL = c.String("converter-url")
	cfg.ChunkSize = c.Int("chunk-size")
	cfg.ChunkOverlap = c.Int("chunk-overlap")
	cfg.TopK = c.Int("top-k")
	cfg.AnswerTimeout = c.Duration("answer-timeout")
	cfg.TelegramToken = c.String("telegram-token")

	cfg.AI = ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
	)

	return cfg
}

func serveCommand(c *cli.Context) error {
	system, err := askit.NewSystem(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer system.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("watch") {
		go func() {
			if err := system.WatchDocuments(ctx); err != nil {
				slog.Error("document watcher stopped", "err", err)
			}
		}()
	}

	return server.New(system.Orchestrator(), c.String("addr")).Start(ctx)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	name := c.Args().First()

	system, err := askit.NewSystem(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer system.Close()

	ctx := context.Background()
	orch := system.Orchestrator()

	jobID, err := orch.Ingest(ctx, name, "")
	if err != nil {
		return err
	}

	for {
		job, err := orch.Job(jobID)
		if err != nil {
			return err
		}
		if job.Status.Terminal() {
			if job.ErrorDetail != "" {
				return fmt.Errorf("ingestion failed: %s", job.ErrorDetail)
			}
			fmt.Printf("ingested %s: %d chunks\n", name, job.Chunks)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}
	question := c.Args().First()

	system, err := askit.NewSystem(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer system.Close()

	answer, err := system.Orchestrator().Query(context.Background(), c.String("session"), question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}

func sourcesCommand(c *cli.Context) error {
	system, err := askit.NewSystem(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer system.Close()

	names, err := system.Orchestrator().ListSources(context.Background())
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	name := c.Args().First()

	system, err := askit.NewSystem(buildConfig(c))
	if err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer system.Close()

	result, err := system.Orchestrator().DeleteSource(context.Background(), name)
	if err != nil {
		return err
	}

	if result.FileErr != nil {
		fmt.Fprintf(os.Stderr, "file: %v\n", result.FileErr)
	} else {
		fmt.Printf("removed %s\n", name)
	}
	if result.IndexErr != nil {
		fmt.Fprintf(os.Stderr, "index: %v\n", result.IndexErr)
	} else if result.ChunksRemoved >= 0 {
		fmt.Printf("removed %d indexed chunks\n", result.ChunksRemoved)
	}
	return nil
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
