// Package ingestion drives the per-file document pipeline: extract text,
// split it into chunks, embed each chunk, and persist the results under a
// forward-only document lifecycle.
//
// Files within a batch are processed sequentially and independently. A file
// that cannot be processed is skipped or marked failed without affecting its
// siblings: unsupported formats, extraction errors, and empty content skip
// the file; zero chunks from non-empty text is fatal for the file; a single
// chunk's embedding failure drops that chunk only. A document whose chunks
// all fail to embed is kept as a failed record for the audit trail.
package ingestion
