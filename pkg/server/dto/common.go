package dto

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrEmptyStart    = errors.New("start cannot be empty")
	ErrEmptyGoal     = errors.New("goal cannot be empty")
	ErrTitleTooLong  = errors.New("title exceeds maximum length (255)")
	ErrInvalidTitle  = errors.New("title contains invalid characters")
	ErrDepthTooLarge = errors.New("max_depth exceeds maximum (6)")
	ErrNegativeDepth = errors.New("max_depth cannot be negative")
)

// MaxFieldLengths defines limits that keep a single request from running away
const (
	MaxTitleLength = 255
	MaxDepth       = 6
)

// ValidateTitle checks a page title supplied by a client.
func ValidateTitle(title string, empty error) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return empty
	}
	if utf8.RuneCountInString(t) > MaxTitleLength {
		return ErrTitleTooLong
	}
	// the link-listing API treats these as separators or markup
	if strings.ContainsAny(t, "|[]{}<>#") {
		return ErrInvalidTitle
	}
	return nil
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
