package domain

import "errors"

// Placeholders returned when the model response holds fewer than two code blocks.
const (
	RecursiveNotFound = "// Recursive solution not found"
	IterativeNotFound = "// Iterative solution not found"
)

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
}

// GenerateResponse is the success body of POST /generate.
type GenerateResponse struct {
	RecursiveSolution string `json:"recursive_solution"`
	IterativeSolution string `json:"iterative_solution"`
}

// ExplainRequest is the body of POST /explain.
type ExplainRequest struct {
	RecursiveCode string `json:"recursiveCode"`
	IterativeCode string `json:"iterativeCode"`
}

// ExplainResponse is the success body of POST /explain.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// ErrorResponse is the failure body of both endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error kinds. Handlers choose the HTTP status from these with errors.Is.
var (
	ErrMissingAPIKey       = errors.New("missing api key")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrEmptyCode           = errors.New("empty code")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamRequest     = errors.New("upstream request failed")
	ErrMalformedCompletion = errors.New("malformed completion")
)

// ServiceError carries a user-facing message together with its kind and cause.
type ServiceError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewServiceError builds a ServiceError.
func NewServiceError(kind error, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: cause}
}
