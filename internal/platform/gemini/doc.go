// Package gemini provides an implementation of the generation.Provider interface
// that uses Google's Gemini API through the google.golang.org/genai client.
//
// This package is an infrastructure adapter: it translates a provider-agnostic
// generation.Call into a GenerateContent request and reports failures as
// *generation.ProviderError so the generation core can classify them.
//
// Key components:
//
// 1. Provider:
//   - Implements the generation.Provider interface for every artifact kind
//   - Sends the system instruction, temperature and output token budget
//   - Requests a JSON response when the call carries a schema
//
// 2. Error Handling:
//   - Retries transient failures (429, 5xx, transport errors) inside the call
//     with full-jitter exponential backoff
//   - Treats safety blocks and empty candidates as permanent failures
package gemini
