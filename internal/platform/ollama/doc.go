// Package ollama implements generation.Provider against a local Ollama
// server's /api/generate endpoint.
//
// Each artifact kind may use its own model; kinds without a resolved model
// are reported as unsupported so the router can fall back to a cloud
// provider.
package ollama
