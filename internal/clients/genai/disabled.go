package genai

import (
	"context"
	"errors"
)

var errDisabled = errors.New("generative AI is not configured")

type disabledClient struct{}

// NewDisabledClient returns a Client whose calls always fail. It stands
// in when no API key is configured so callers take their rule-based
// paths without special-casing a missing client.
func NewDisabledClient() Client { return disabledClient{} }

func (disabledClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", errDisabled
}

func (disabledClient) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return "", errDisabled
}

func (disabledClient) ListModels(ctx context.Context) ([]string, error) {
	return nil, errDisabled
}
