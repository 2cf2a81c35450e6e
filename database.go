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

package equipkb

import (
	"io"
	"log/slog"
	"time"

	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/ai/openai"
	"github.com/slateworks/equipkb/chunker"
	"github.com/slateworks/equipkb/extract"
	"github.com/slateworks/equipkb/ingestion"
	"github.com/slateworks/equipkb/reembed"
	"github.com/slateworks/equipkb/retrieval"
	"github.com/slateworks/equipkb/storage"
	"github.com/slateworks/equipkb/storage/badger"
)

// Database bundles the storage backend, repositories, and AI collaborators
// behind factory methods for the ingestion, retrieval, and maintenance
// components. Construct once at process start and share by reference.
type Database struct {
	backend       *badger.Backend
	equipmentRepo storage.EquipmentRepository
	documentRepo  storage.DocumentRepository
	chunkRepo     storage.ChunkRepository
	embedder      ai.Embedder
	extractor     extract.Extractor
	splitter      *chunker.Splitter
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig    *ai.Config
	chunkerOpts []chunker.Option
	embedder    ai.Embedder
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithChunkerOptions overrides the chunk size and overlap defaults.
func WithChunkerOptions(opts ...chunker.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.chunkerOpts = opts
	}
}

// WithEmbedder injects an embedder directly, bypassing the AI config.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// NewDatabase opens (or creates) the store at filePath and wires the
// default collaborators.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	equipmentRepo, err := badger.NewEquipmentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		equipmentRepo.Close()
		backend.Close()
		return nil, err
	}

	chunkRepo := badger.NewChunkRepository(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			documentRepo.Close()
			equipmentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:       backend,
		equipmentRepo: equipmentRepo,
		documentRepo:  documentRepo,
		chunkRepo:     chunkRepo,
		embedder:      embedder,
		extractor:     extract.NewTextExtractor(),
		splitter:      chunker.NewSplitter(options.chunkerOpts...),
		logger:        slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.documentRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.equipmentRepo.Close(); err != nil {
		db.logger.Error("error closing equipment repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) EquipmentRepository() storage.EquipmentRepository {
	return db.equipmentRepo
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) NewIngestor(opts ...ingestion.Option) (*ingestion.Ingestor, error) {
	return ingestion.NewIngestor(db.equipmentRepo, db.documentRepo, db.chunkRepo,
		db.extractor, db.splitter, db.embedder, opts...)
}

func (db *Database) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(db.chunkRepo, db.embedder, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.documentRepo, db.chunkRepo, db.embedder, config, progress)
}

func (db *Database) NewSweeper(maxAge time.Duration) (*reembed.Sweeper, error) {
	return reembed.NewSweeper(db.documentRepo, maxAge)
}
