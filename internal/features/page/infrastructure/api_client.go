package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	generationdomain "codepair/internal/features/generation/domain"
	"codepair/internal/features/page/domain"
)

// ErrMissingExplanation is returned when a successful /explain response has no explanation field.
var ErrMissingExplanation = errors.New("malformed response: missing explanation")

// APIError is a non-2xx answer from the generation service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// APIClient calls the /generate and /explain endpoints.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the service at baseURL. A nil httpClient
// uses one without a timeout; cancellation goes through the context.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Generate posts {prompt, language}. language is sent exactly as given.
func (c *APIClient) Generate(ctx context.Context, prompt, language string) (*domain.GenerationResult, error) {
	var resp struct {
		RecursiveSolution string `json:"recursive_solution"`
		IterativeSolution string `json:"iterative_solution"`
	}
	req := generationdomain.GenerateRequest{Prompt: prompt, Language: language}
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return nil, err
	}
	return &domain.GenerationResult{
		RecursiveSolution: resp.RecursiveSolution,
		IterativeSolution: resp.IterativeSolution,
	}, nil
}

// Explain posts the two snippets verbatim and returns the explanation.
func (c *APIClient) Explain(ctx context.Context, recursiveCode, iterativeCode string) (string, error) {
	var resp struct {
		Explanation *string `json:"explanation"`
	}
	req := generationdomain.ExplainRequest{RecursiveCode: recursiveCode, IterativeCode: iterativeCode}
	if err := c.post(ctx, "/explain", req, &resp); err != nil {
		return "", err
	}
	if resp.Explanation == nil {
		return "", ErrMissingExplanation
	}
	return *resp.Explanation, nil
}

func (c *APIClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure generationdomain.ErrorResponse
		if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: failure.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}
