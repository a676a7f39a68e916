// Package suggest provides recipe-suggestion collaborators.
package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/greenplate/internal/contract"
	gobreaker "github.com/sony/gobreaker/v2"
)

// vectorStoreComponent is the flow component whose result count is tweaked per request.
const vectorStoreComponent = "AstraDB-0kWRk"

// maxResponseBytes caps the body read from the suggestion service.
const maxResponseBytes = 1 << 20

// ErrEmptyResponse is returned when the flow answered without any text.
var ErrEmptyResponse = errors.New("suggestion service returned no text")

// flowRequest is the JSON payload posted to the flow endpoint.
type flowRequest struct {
	InputValue string                    `json:"input_value"`
	OutputType string                    `json:"output_type"`
	InputType  string                    `json:"input_type"`
	Tweaks     map[string]map[string]int `json:"tweaks"`
}

// flowResponse mirrors the nested path outputs[0].outputs[0].results.text.data.text.
type flowResponse struct {
	Outputs []struct {
		Outputs []struct {
			Results struct {
				Text struct {
					Data struct {
						Text string `json:"text"`
					} `json:"data"`
				} `json:"text"`
			} `json:"results"`
		} `json:"outputs"`
	} `json:"outputs"`
}

// HTTPConfig configures the HTTP flow client.
type HTTPConfig struct {
	Endpoint string
	Token    string
	Results  int
	Timeout  time.Duration
}

// HTTPSuggester calls a hosted retrieval flow over HTTP behind a circuit breaker.
type HTTPSuggester struct {
	endpoint string
	token    string
	results  int
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[string]
}

var _ contract.Suggester = (*HTTPSuggester)(nil)

// NewHTTPSuggester creates a flow client. The breaker opens after three consecutive
// failures and probes again after thirty seconds.
func NewHTTPSuggester(cfg HTTPConfig) *HTTPSuggester {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = contract.DefaultSuggestTimeout
	}
	results := cfg.Results
	if results <= 0 {
		results = contract.DefaultSuggestResults
	}
	name := "suggestion-flow"
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			contract.LogInfo("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &HTTPSuggester{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		results:  results,
		client:   &http.Client{Timeout: timeout},
		cb:       cb,
	}
}

// Suggest posts the prompt and returns the flow's text answer.
func (s *HTTPSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	return s.cb.Execute(func() (string, error) {
		return s.call(ctx, prompt)
	})
}

// State returns the circuit breaker state name.
func (s *HTTPSuggester) State() string {
	return s.cb.State().String()
}

func (s *HTTPSuggester) call(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(flowRequest{
		InputValue: prompt,
		OutputType: "text",
		InputType:  "text",
		Tweaks:     map[string]map[string]int{vectorStoreComponent: {"number_of_results": s.results}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", bearer(s.token))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("making API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("suggestion service returned %s", resp.Status)
	}

	text, err := extractText(body)
	if err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return text, nil
}

// extractText pulls the answer out of the nested flow response.
func extractText(body []byte) (string, error) {
	var fr flowResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return "", err
	}
	if len(fr.Outputs) == 0 || len(fr.Outputs[0].Outputs) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(fr.Outputs[0].Outputs[0].Results.Text.Data.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// bearer formats the Authorization header, accepting tokens with or without the scheme.
func bearer(token string) string {
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return "Bearer " + token
}
