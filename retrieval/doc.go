// Package retrieval answers free-text queries with the most semantically
// relevant document chunks, scoped by tenant and equipment.
//
// The Retriever embeds the query once, builds an equality filter set
// (disabled chunks are always excluded), and runs a filtered similarity
// search with candidate oversampling. Results are projected into two
// positionally aligned views: clean content for language-model consumption
// and per-chunk metadata for auditing.
package retrieval
