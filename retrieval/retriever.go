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

package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/slateworks/equipkb/ai"
	"github.com/slateworks/equipkb/core"
	"github.com/slateworks/equipkb/storage"
)

const (
	// DefaultK is the result count used when the caller does not set one.
	DefaultK = 5

	// DefaultOversample multiplies k to size the candidate pool, trading
	// extra scan work for higher recall. Tunable, not a contract.
	DefaultOversample = 5
)

// Retriever answers free-text queries over the chunk store.
type Retriever struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	logger          *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger.With("component", "retriever")
		}
	}
}

// NewRetriever creates a new Retriever.
func NewRetriever(chunkRepository storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		logger:          slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// queryConfig holds per-call retrieval parameters.
type queryConfig struct {
	k            int
	equipmentID  string
	tenantID     string
	extraFilters map[string]any
	oversample   int
}

// QueryOption configures a single Retrieve call.
type QueryOption func(*queryConfig)

// WithK sets the number of results to return. Default is DefaultK.
// Non-positive values are ignored.
func WithK(k int) QueryOption {
	return func(q *queryConfig) {
		if k > 0 {
			q.k = k
		}
	}
}

// WithEquipment scopes retrieval to one equipment. A malformed identifier
// drops the filter with a warning instead of failing the call.
func WithEquipment(equipmentID string) QueryOption {
	return func(q *queryConfig) {
		q.equipmentID = equipmentID
	}
}

// WithTenant scopes retrieval to one tenant, as an exact match.
func WithTenant(tenantID string) QueryOption {
	return func(q *queryConfig) {
		q.tenantID = tenantID
	}
}

// WithExtraFilters merges caller-supplied filters last. Keys collide with
// and override the built-in filters, so an advanced caller can widen scope,
// including re-admitting disabled chunks.
func WithExtraFilters(filters map[string]any) QueryOption {
	return func(q *queryConfig) {
		q.extraFilters = filters
	}
}

// WithOversample sets the candidate oversampling multiplier.
// Default is DefaultOversample. Non-positive values are ignored.
func WithOversample(factor int) QueryOption {
	return func(q *queryConfig) {
		if factor > 0 {
			q.oversample = factor
		}
	}
}

// Retrieve embeds the query and returns the top-k most similar chunks under
// the configured filters. Failure to embed the query is fatal for the call;
// zero matches is a valid result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...QueryOption) (*core.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	q := &queryConfig{
		k:          DefaultK,
		oversample: DefaultOversample,
	}
	for _, opt := range opts {
		opt(q)
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error embedding query", "err", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	filter := r.buildFilter(q)
	matches, err := r.chunkRepository.FindSimilar(ctx, vector, filter, q.k, q.k*q.oversample)
	if err != nil {
		r.logger.Error("error searching for similar chunks", "err", err)
		return nil, err
	}

	result := projectResult(query, q, matches)
	r.logger.Debug("retrieval complete",
		"k", q.k, "retrieved", len(matches), "equipment", q.equipmentID, "tenant", q.tenantID)
	return result, nil
}

// buildFilter assembles the equality filter set: disabled chunks excluded,
// optional equipment and tenant scope, caller extras merged last.
func (r *Retriever) buildFilter(q *queryConfig) storage.Filter {
	filter := storage.Filter{
		storage.FieldIsDisabled: false,
	}

	if q.equipmentID != "" {
		id, err := core.ParseID(q.equipmentID)
		if err != nil {
			r.logger.Warn("malformed equipment id, searching unscoped by equipment",
				"equipment", q.equipmentID, "err", err)
		} else {
			filter[storage.FieldEquipmentId] = id
		}
	}

	if q.tenantID != "" {
		filter[storage.FieldTenantId] = q.tenantID
	}

	maps.Copy(filter, q.extraFilters)
	return filter
}

// projectResult splits ranked rows into the clean content view and the
// metadata view. Both are built from the same rows in the same order.
func projectResult(query string, q *queryConfig, matches []*storage.ScoredChunk) *core.RetrievalResult {
	data := make([]core.ChunkContent, len(matches))
	chunkMeta := make([]core.ChunkMetadata, len(matches))

	for i, match := range matches {
		chunk := match.Chunk
		data[i] = core.ChunkContent{
			Text:     chunk.Text,
			FileName: chunk.FileName,
			Score:    match.Score,
		}
		chunkMeta[i] = core.ChunkMetadata{
			ChunkId:     chunk.ChunkId,
			DocumentId:  chunk.DocumentId.String(),
			EquipmentId: chunk.EquipmentId.String(),
			TenantId:    chunk.TenantId,
			ChunkIndex:  chunk.ChunkIndex,
			Score:       match.Score,
			FileName:    chunk.FileName,
		}
	}

	return &core.RetrievalResult{
		Data: data,
		Metadata: core.RetrievalMetadata{
			Query:           query,
			K:               q.k,
			ChunksRetrieved: len(matches),
			EquipmentId:     q.equipmentID,
			TenantId:        q.tenantID,
			Chunks:          chunkMeta,
		},
	}
}
