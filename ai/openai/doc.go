// Package openai implements the ai.Embedder interface against
// OpenAI-compatible embedding APIs (OpenAI, Ollama, vLLM, Gemini's
// compatibility endpoint) via langchaingo.
package openai
