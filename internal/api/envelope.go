package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// Envelope is the wire format for every API response. Success responses
// carry data; failures carry a structured error and success=false.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError is the error object inside failure envelopes.
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps all response bodies in the standard envelope.
// Registered as a huma transformer so handlers return plain DTOs.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			Success: false,
			Error: &EnvelopeError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		}, nil
	}

	// Errors that bypassed RegisterErrorHandler (huma's own models).
	if statusErr, ok := v.(huma.StatusError); ok && !strings.HasPrefix(status, "2") {
		return &Envelope{
			Success: false,
			Error: &EnvelopeError{
				Code:    statusToCode(statusErr.GetStatus()),
				Message: statusErr.Error(),
			},
		}, nil
	}

	return &Envelope{Success: true, Data: v}, nil
}
