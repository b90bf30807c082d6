package domain

import (
	"fmt"
)

const (
	ErrCodeValidation        string = "VALIDATION_ERROR"
	ErrCodeNotFound          string = "NOT_FOUND"
	ErrCodeRateLimited       string = "RATE_LIMITED"
	ErrCodeInternal          string = "INTERNAL_ERROR"
	ErrCodeExternal          string = "EXTERNAL_SERVICE_ERROR"
	ErrCodePersisting        string = "PERSISTING_ERROR"
	ErrCodeResourceExhausted string = "RESOURCE_EXHAUSTED"
	ErrCodeModelUnavailable  string = "MODEL_UNAVAILABLE"
)

type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"cause"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Message:%s, Cause:%v", e.Message, e.Cause)
	}
	return fmt.Sprintf("Message:%s", e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code, msg string, cause error) *DomainError {
	return &DomainError{Code: code, Message: msg, Cause: cause}
}

var ErrEmptyPrompt = &DomainError{Code: ErrCodeValidation, Message: "prompt must not be empty", Cause: nil}
var ErrUnsupportedSize = &DomainError{Code: ErrCodeValidation, Message: "width and height must be one of the supported presets", Cause: nil}
var ErrUnknownQuality = &DomainError{Code: ErrCodeValidation, Message: "unknown quality level", Cause: nil}
var ErrTooManyRequests = &DomainError{Code: ErrCodeRateLimited, Message: "too many requests", Cause: nil}
