// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scopus

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes a caller may want to tell apart.
var (
	// ErrUnauthorized indicates a missing, invalid or unentitled API key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the key's quota or request rate was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrMalformedResponse indicates a body that is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrAPI is the catch-all for other error responses.
	ErrAPI = errors.New("scopus API error")
)

// APIError describes an error response from the Scopus API.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the service status code from the body, e.g. RESOURCE_NOT_FOUND
	// or AUTHENTICATION_ERROR. Empty when the body carried none.
	Code string

	// Message is the human-readable message from the body, or the
	// truncated body itself.
	Message string

	// Endpoint is the path that was called.
	Endpoint string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("scopus %s: HTTP %d", e.Endpoint, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap maps the response to one of the package sentinels for errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Code == "RESOURCE_NOT_FOUND" || e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.Code == "AUTHENTICATION_ERROR" || e.Code == "AUTHORIZATION_ERROR" ||
		e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.Code == "QUOTA_EXCEEDED" || e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrAPI
	}
}

// malformed wraps a decoding failure.
func malformed(endpoint string, err error) error {
	return fmt.Errorf("scopus %s: %w: %v", endpoint, ErrMalformedResponse, err)
}
