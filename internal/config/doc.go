// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, a config.yaml file and a
// .env file). It provides type-safe access to application settings needed by
// different components while keeping configuration details separate from
// business logic.
//
// Environment variables use the STUDYGEN_ prefix with dots replaced by
// underscores, e.g. STUDYGEN_LLM_OLLAMA_URL for llm.ollama.url.
package config
