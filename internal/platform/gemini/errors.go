package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// errBlocked is the cause attached when the prompt or candidate was
	// stopped by safety filters.
	errBlocked = errors.New("content blocked by safety filters")

	// errNoContent is the cause attached when the response has no usable text.
	errNoContent = errors.New("no content generated")
)
