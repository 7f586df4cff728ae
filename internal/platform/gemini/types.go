package gemini

import (
	"context"

	"google.golang.org/genai"
)

// ProviderName is the identity reported by Provider.Name.
const ProviderName = "gemini"

// contentGenerator is the subset of *genai.Models used by Provider. Tests
// replace it with a scripted fake.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}
