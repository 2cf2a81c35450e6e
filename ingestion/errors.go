package ingestion

import "errors"

var (
	// ErrEquipmentRepositoryRequired is returned when an equipment repository is not provided.
	ErrEquipmentRepositoryRequired = errors.New("equipment repository required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrSplitterRequired is returned when a text splitter is not provided.
	ErrSplitterRequired = errors.New("splitter required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrNoFiles is returned when an ingestion request carries no files.
	ErrNoFiles = errors.New("no files to ingest")

	// ErrEmptyContent indicates a file whose extracted text was empty after
	// trimming. The file is skipped; the batch continues.
	ErrEmptyContent = errors.New("no usable text content")

	// ErrChunkingExhausted indicates non-empty text that produced zero
	// chunks. Fatal for the file; no document record is created.
	ErrChunkingExhausted = errors.New("chunking produced no chunks")

	// ErrAllChunksFailed indicates a document where every chunk failed to
	// embed. The document record is kept, marked failed.
	ErrAllChunksFailed = errors.New("all chunks failed to embed")
)
