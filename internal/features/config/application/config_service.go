package application

import (
	"fmt"
	"strings"

	"codepair/internal/config"
	"codepair/internal/features/config/domain"
)

// ConfigService defines the interface for config management.
type ConfigService interface {
	GetConfig() (*domain.AppConfig, error)
	SaveConfig(config *domain.AppConfig) error
}

// configService is the implementation of ConfigService.
type configService struct {
	store config.AppConfigService
}

// NewConfigService creates a new instance of configService backed by store.
func NewConfigService(store config.AppConfigService) ConfigService {
	return &configService{store: store}
}

// GetConfig returns the effective application configuration.
func (s *configService) GetConfig() (*domain.AppConfig, error) {
	return s.store.LoadAppConfig()
}

// SaveConfig validates the configuration and persists it.
func (s *configService) SaveConfig(appConfig *domain.AppConfig) error {
	if err := Validate(appConfig); err != nil {
		return err
	}
	return s.store.SaveAppConfig(appConfig)
}

// ValidationError reports an unusable application configuration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks templates and model parameters.
func Validate(c *domain.AppConfig) error {
	if c == nil {
		return &ValidationError{Field: "config", Reason: "is empty"}
	}
	if err := validateTemplate("generation_prompt", c.GenerationPrompt, domain.PlaceholderLanguage, domain.PlaceholderPrompt); err != nil {
		return err
	}
	if err := validateTemplate("explanation_prompt", c.ExplanationPrompt, domain.PlaceholderRecursiveCode, domain.PlaceholderIterativeCode); err != nil {
		return err
	}
	if err := validateParams("generation_params", c.GenerationParams); err != nil {
		return err
	}
	return validateParams("explanation_params", c.ExplanationParams)
}

func validateTemplate(field, tmpl string, placeholders ...string) error {
	if strings.TrimSpace(tmpl) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	for _, p := range placeholders {
		if !strings.Contains(tmpl, p) {
			return &ValidationError{Field: field, Reason: "missing placeholder " + p}
		}
	}
	return nil
}

func validateParams(field string, p domain.ModelParams) error {
	if p.Temperature < 0 || p.Temperature > 2 {
		return &ValidationError{Field: field + ".temperature", Reason: "must be between 0 and 2"}
	}
	if p.MaxTokens <= 0 {
		return &ValidationError{Field: field + ".max_tokens", Reason: "must be positive"}
	}
	return nil
}
