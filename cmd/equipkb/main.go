// Copyright 2025 Slateworks
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
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/slateworks/equipkb"
	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/ingestion"
	"github.com/slateworks/equipkb/reembed"
	"github.com/slateworks/equipkb/retrieval"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "equipkb",
		Usage: "Equipment document knowledge base: ingest manuals, retrieve relevant passages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"EQUIPKB_LOG_LEVEL"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "create-equipment",
				Usage:  "Register a piece of equipment",
				Action: createEquipmentCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Equipment name (unique per tenant)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Free-text equipment description",
					},
				),
			},
			{
				Name:   "list-equipment",
				Usage:  "List registered equipment",
				Action: listEquipmentCommand,
				Flags:  commonFlags(),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest document files for a piece of equipment",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append(commonFlags(),
					equipmentFlag(true),
					&cli.StringFlag{
						Name:  "uploader",
						Usage: "Uploader identifier recorded on each document",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Free-text description recorded on each document",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				),
			},
			{
				Name:      "search",
				Usage:     "Retrieve the most relevant passages for a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(commonFlags(),
					equipmentFlag(false),
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of passages to return",
						Value: retrieval.DefaultK,
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				),
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed stored chunks with the configured embedding model",
				Action: reembedCommand,
				Flags: append(commonFlags(),
					equipmentFlag(false),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
				),
			},
			{
				Name:   "sweep",
				Usage:  "Mark documents stuck in processing as failed",
				Action: sweepCommand,
				Flags: append(commonFlags(),
					&cli.DurationFlag{
						Name:  "max-age",
						Usage: "How long a document may sit in processing before it is swept",
						Value: reembed.DefaultSweepAge,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
			EnvVars:  []string{"EQUIPKB_DB"},
		},
		&cli.StringFlag{
			Name:    "tenant",
			Usage:   "Tenant identifier",
			Value:   "default",
			EnvVars: []string{"EQUIPKB_TENANT"},
		},
	}
}

func equipmentFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "equipment",
		Aliases:  []string{"e"},
		Usage:    "Equipment identifier",
		Required: required,
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "embedding-host",
		Usage:   "Embedding service host URL",
		Value:   "http://localhost:11434/v1",
		EnvVars: []string{"EQUIPKB_EMBEDDING_HOST"},
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "embedding-model",
		Usage:   "Embedding model name",
		Value:   "embeddinggemma",
		EnvVars: []string{"EQUIPKB_EMBEDDING_MODEL"},
	}
}

func openDatabase(c *cli.Context) (*equipkb.Database, error) {
	return equipkb.NewDatabase(c.String("db"), equipkb.WithAIConfig(ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)))
}

func createEquipmentCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	equipment, err := db.EquipmentRepository().AddEquipment(context.Background(), &core.Equipment{
		Name:        c.String("name"),
		Description: c.String("description"),
		TenantId:    c.String("tenant"),
		IsActive:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	fmt.Printf("Created equipment %s (%s)\n", equipment.Id, equipment.Name)
	return nil
}

func listEquipmentCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	equipments, err := db.EquipmentRepository().ListEquipment(context.Background(), c.String("tenant"))
	if err != nil {
		return fmt.Errorf("failed to list equipment: %w", err)
	}

	for _, equipment := range equipments {
		active := "active"
		if !equipment.IsActive {
			active = "inactive"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", equipment.Id, equipment.Name, active, equipment.Description)
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	equipmentID, err := core.ParseID(c.String("equipment"))
	if err != nil {
		return fmt.Errorf("invalid equipment id %q: %w", c.String("equipment"), err)
	}

	files := make([]ingestion.FileUpload, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, ingestion.FileUpload{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Data:        data,
		})
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ingestor, err := db.NewIngestor()
	if err != nil {
		return err
	}

	result, err := ingestor.Ingest(context.Background(), ingestion.IngestRequest{
		EquipmentId: equipmentID,
		TenantId:    c.String("tenant"),
		UploadedBy:  c.String("uploader"),
		Description: c.String("description"),
		Files:       files,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for _, summary := range result.Documents {
		fmt.Printf("Ingested %s as document %s (%d chunks)\n",
			summary.FileName, summary.DocumentId, summary.ChunkCount)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", failure.FileName, failure.Err)
	}
	fmt.Printf("%d of %d files ingested\n", result.Count, c.NArg())
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	retriever, err := db.NewRetriever()
	if err != nil {
		return err
	}

	opts := []retrieval.QueryOption{
		retrieval.WithK(c.Int("k")),
		retrieval.WithTenant(c.String("tenant")),
	}
	if c.String("equipment") != "" {
		opts = append(opts, retrieval.WithEquipment(c.String("equipment")))
	}

	result, err := retriever.Retrieve(context.Background(), query, opts...)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("Found %d passages\n", result.Metadata.ChunksRetrieved)
	for i, content := range result.Data {
		meta := result.Metadata.Chunks[i]
		fmt.Printf("%d: [%.3f] %s (document %s, chunk %d)\n%s\n\n",
			i, content.Score, content.FileName, meta.DocumentId, meta.ChunkIndex, content.Text)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	var equipmentID core.ID
	if c.String("equipment") != "" {
		var err error
		equipmentID, err = core.ParseID(c.String("equipment"))
		if err != nil {
			return fmt.Errorf("invalid equipment id %q: %w", c.String("equipment"), err)
		}
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Workers:        reembed.DefaultConfig().Workers,
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(config, os.Stderr)
	if err != nil {
		return err
	}

	if err := reembedder.Run(context.Background(), equipmentID); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	sweeper, err := db.NewSweeper(c.Duration("max-age"))
	if err != nil {
		return err
	}

	swept, err := sweeper.Sweep(context.Background())
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Swept %d stale documents\n", swept)
	return nil
}

func setup(c *cli.Context) error {
	// Missing .env is fine; flags and real env still apply
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
