package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	configdomain "codepair/internal/features/config/domain"
	"codepair/internal/features/generation/domain"
	"codepair/internal/features/generation/infrastructure"
	"codepair/internal/metrics"

	"go.uber.org/zap"
)

// Operation names used in logs and metrics.
const (
	OperationGenerate = "generate"
	OperationExplain  = "explain"
)

const (
	missingAPIKeyMessage  = "API key is not configured. Please add your TOGETHER_API_KEY to the .env file."
	invalidRequestMessage = "A problem description and language are required."
	emptyCodeMessage      = "Both code blocks are empty."
	timeoutMessage        = "The request to the AI service timed out. Please try again."
)

// CodePairService defines the interface for the generation application service.
type CodePairService interface {
	Generate(ctx context.Context, req *domain.GenerateRequest, appConfig *configdomain.AppConfig) (*domain.GenerateResponse, error)
	Explain(ctx context.Context, req *domain.ExplainRequest, appConfig *configdomain.AppConfig) (*domain.ExplainResponse, error)
}

// codePairService is the implementation of CodePairService.
type codePairService struct {
	client  infrastructure.ChatClient
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCodePairService creates a new instance of codePairService. A nil client
// means no API key is configured; every call then fails with ErrMissingAPIKey.
func NewCodePairService(client infrastructure.ChatClient, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) CodePairService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &codePairService{client: client, timeout: timeout, logger: logger, metrics: m}
}

// Generate asks the model for a recursive and an iterative solution.
func (s *codePairService) Generate(ctx context.Context, req *domain.GenerateRequest, appConfig *configdomain.AppConfig) (*domain.GenerateResponse, error) {
	if s.client == nil {
		return nil, domain.NewServiceError(domain.ErrMissingAPIKey, missingAPIKeyMessage, nil)
	}
	if req.Prompt == "" || req.Language == "" {
		return nil, domain.NewServiceError(domain.ErrInvalidRequest, invalidRequestMessage, nil)
	}
	if !appConfig.SupportsLanguage(req.Language) {
		return nil, domain.NewServiceError(domain.ErrInvalidRequest,
			fmt.Sprintf("Unsupported language: %s", req.Language), nil)
	}

	prompt := strings.NewReplacer(
		configdomain.PlaceholderLanguage, req.Language,
		configdomain.PlaceholderPrompt, req.Prompt,
	).Replace(appConfig.GenerationPrompt)

	content, err := s.complete(ctx, OperationGenerate, prompt, appConfig.GenerationParams)
	if err != nil {
		switch {
		case isTimeout(err):
			return nil, domain.NewServiceError(domain.ErrUpstreamTimeout, timeoutMessage, err)
		case errors.Is(err, infrastructure.ErrNoChoices):
			return nil, domain.NewServiceError(domain.ErrMalformedCompletion,
				fmt.Sprintf("Failed to parse the AI response. Details: %v", err), err)
		default:
			return nil, domain.NewServiceError(domain.ErrUpstreamRequest,
				fmt.Sprintf("API request failed: %v", err), err)
		}
	}

	blocks := ExtractCodeBlocks(content)
	resp := &domain.GenerateResponse{
		RecursiveSolution: domain.RecursiveNotFound,
		IterativeSolution: domain.IterativeNotFound,
	}
	if len(blocks) > 0 {
		resp.RecursiveSolution = blocks[0]
	}
	if len(blocks) > 1 {
		resp.IterativeSolution = blocks[1]
	}

	s.logger.Info("solutions generated",
		zap.String("language", req.Language),
		zap.Int("code_blocks", len(blocks)),
	)
	return resp, nil
}

// Explain asks the model to contrast the two snippets for a beginner.
func (s *codePairService) Explain(ctx context.Context, req *domain.ExplainRequest, appConfig *configdomain.AppConfig) (*domain.ExplainResponse, error) {
	recursiveCode := strings.TrimSpace(req.RecursiveCode)
	iterativeCode := strings.TrimSpace(req.IterativeCode)

	if recursiveCode == "" && iterativeCode == "" {
		return nil, domain.NewServiceError(domain.ErrEmptyCode, emptyCodeMessage, nil)
	}
	if s.client == nil {
		return nil, domain.NewServiceError(domain.ErrMissingAPIKey, missingAPIKeyMessage, nil)
	}

	prompt := strings.NewReplacer(
		configdomain.PlaceholderRecursiveCode, recursiveCode,
		configdomain.PlaceholderIterativeCode, iterativeCode,
	).Replace(appConfig.ExplanationPrompt)

	content, err := s.complete(ctx, OperationExplain, prompt, appConfig.ExplanationParams)
	if err != nil {
		kind := domain.ErrUpstreamRequest
		if isTimeout(err) {
			kind = domain.ErrUpstreamTimeout
		}
		return nil, domain.NewServiceError(kind, fmt.Sprintf("Explanation failed: %v", err), err)
	}

	return &domain.ExplainResponse{Explanation: content}, nil
}

func (s *codePairService) complete(ctx context.Context, operation, prompt string, params configdomain.ModelParams) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := s.client.Complete(ctx, infrastructure.CompletionRequest{
		Messages:    infrastructure.UserPrompt(prompt),
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	elapsed := time.Since(start)
	s.metrics.ObserveCompletion(operation, elapsed, err)

	if err != nil {
		s.logger.Error("chat completion failed",
			zap.String("operation", operation),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return "", err
	}
	return content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
