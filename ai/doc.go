// Package ai provides the embedding abstraction used by ingestion and
// retrieval.
//
// The Embedder interface maps text to fixed-dimension dense vectors. The
// ai/openai sub-package implements it against any OpenAI-compatible
// embedding endpoint; ai/mock provides deterministic test doubles so
// business logic can be tested without an external service.
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder interface
// to keep callers decoupled from the concrete client. Mock constructors
// return concrete types so tests can inject behavior and assert call counts.
package ai
