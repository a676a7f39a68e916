package suggest

import (
	"context"
	"errors"

	"github.com/huangsam/greenplate/internal/contract"
)

// StaticSuggester answers every prompt with a fixed id list.
// It lets the pipeline run offline against a local catalog.
type StaticSuggester struct {
	IDs string
}

var _ contract.Suggester = StaticSuggester{}

// Suggest returns the configured ids.
func (s StaticSuggester) Suggest(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.IDs == "" {
		return "", ErrEmptyResponse
	}
	return s.IDs, nil
}

// FromConfig picks the suggester for a validated config. Static ids win over the endpoint.
func FromConfig(cfg *contract.Config) (contract.Suggester, error) {
	switch {
	case cfg.SuggestIDs != "":
		return StaticSuggester{IDs: cfg.SuggestIDs}, nil
	case cfg.SuggestEndpoint != "":
		return NewHTTPSuggester(HTTPConfig{
			Endpoint: cfg.SuggestEndpoint,
			Token:    cfg.SuggestToken,
			Results:  cfg.SuggestResults,
			Timeout:  cfg.SuggestTimeout,
		}), nil
	default:
		return nil, errors.New("no suggestion source configured: set --suggest-endpoint or --suggest-ids")
	}
}
