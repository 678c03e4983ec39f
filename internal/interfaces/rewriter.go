package interfaces

import "context"

// TextRewriter is the external text-improvement collaborator (an LLM call).
// Implementations fix spacing and OCR artifacts without adding or removing
// semantic content. The extraction core treats every implementation as
// unreliable: it applies its own skip/length-ratio/error guards around the
// single attempt it makes per page, so implementations should just do the
// call and return whatever they got.
type TextRewriter interface {
	// Rewrite returns a cleaned-up version of text.
	Rewrite(ctx context.Context, text string) (string, error)

	// Provider names the backing service for logging and the status API.
	Provider() string
}
