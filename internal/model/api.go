package model

import "time"

// APIResponse is the standard response envelope for unary HTTP responses.
// Streamed listings are raw NDJSON records and skip the envelope.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every unary response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeUnimplemented   = "UNIMPLEMENTED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// SignInRequest is the request body for POST /auth/signin.
type SignInRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// SignInResponse is the response for POST /auth/signin.
type SignInResponse struct {
	Token string `json:"token"`
}

// CreateVacancyRequest is the request body for POST /v1/vacancies.
type CreateVacancyRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Division    Division `json:"division"`
	Country     string   `json:"country"`
}

// UpdateVacancyRequest is the request body for PUT /v1/vacancies/{id}.
// All mutable fields are overwritten; there is no partial update.
type UpdateVacancyRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Division    Division `json:"division"`
	Country     string   `json:"country"`
	Views       int      `json:"views"`
}

// DeleteVacancyResponse is the response for DELETE /v1/vacancies/{id}.
type DeleteVacancyResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Vacancies int    `json:"vacancies"`
	Uptime    int64  `json:"uptime_seconds"`
}
