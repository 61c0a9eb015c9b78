package domain

import "strings"

// Template placeholders substituted into the prompt templates.
const (
	PlaceholderLanguage      = "{language}"
	PlaceholderPrompt        = "{prompt}"
	PlaceholderRecursiveCode = "{recursive_code}"
	PlaceholderIterativeCode = "{iterative_code}"
)

// AppConfig represents the application configuration.
type AppConfig struct {
	GenerationPrompt  string      `json:"generation_prompt"`
	ExplanationPrompt string      `json:"explanation_prompt"`
	GenerationParams  ModelParams `json:"generation_params"`
	ExplanationParams ModelParams `json:"explanation_params"`
	Languages         []string    `json:"languages"`
}

// SupportsLanguage reports whether language is one of the selectable
// languages, ignoring case. An empty list accepts any language.
func (c *AppConfig) SupportsLanguage(language string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	for _, l := range c.Languages {
		if strings.EqualFold(l, language) {
			return true
		}
	}
	return false
}

// ModelParams defines the parameters for the AI model.
type ModelParams struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

const defaultGenerationPrompt = `
You are an expert {language} programmer.

Given the problem: "{prompt}", write:

1. A complete and runnable **recursive solution**.
2. A complete and runnable **iterative solution**.

Respond with exactly two code blocks, each labeled inside markdown with triple backticks.
Only code should be inside the blocks.
`

const defaultExplanationPrompt = "\nYou are a programming tutor. Please explain the two code snippets below to a beginner in a structured and easy-to-understand format.\n\n" +
	"Format your explanation with these sections:\n\n" +
	"### 🌀 Recursive Version Explanation\n- What it does\n- Step-by-step logic\n- Example with values\n- Pros and cons\n\n" +
	"### 🔁 Iterative Version Explanation\n- What it does\n- Step-by-step logic\n- Example with values\n- Pros and cons\n\n" +
	"### ⚔️ Recursion vs Iteration\n- Key differences\n- When to use which\n\n" +
	"Here are the two code snippets:\n\n" +
	"#### Recursive Version:\n```{recursive_code}```\n\n" +
	"#### Iterative Version:\n```{iterative_code}```\n"

// DefaultAppConfig returns the built-in configuration used when no config file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		GenerationPrompt:  defaultGenerationPrompt,
		ExplanationPrompt: defaultExplanationPrompt,
		GenerationParams:  ModelParams{Temperature: 0.5, MaxTokens: 2048},
		ExplanationParams: ModelParams{Temperature: 0.4, MaxTokens: 1524},
		Languages:         []string{"Python", "JavaScript", "Java", "C++", "C", "Go", "Rust", "Ruby", "TypeScript", "C#"},
	}
}
