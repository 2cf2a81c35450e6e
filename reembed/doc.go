// Package reembed provides maintenance operations over the chunk store:
// re-embedding existing chunks with a new or updated embedding model, and
// sweeping documents left stuck in processing by an interrupted ingestion.
//
// Re-embedding fans out per document across a worker pool; documents touch
// disjoint chunk sets, so concurrent processing is safe. Within a document,
// chunks are processed in batches with retry, exponential backoff, and
// vector normalization.
package reembed
