// Package openai implements generation.Provider with the OpenAI chat
// completions API through github.com/openai/openai-go.
package openai
