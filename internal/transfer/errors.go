package transfer

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrorCodeRouteNotFound      ErrorCode = "ROUTE_NOT_FOUND"
	ErrorCodeQuoteNotFound      ErrorCode = "QUOTE_NOT_FOUND"
	ErrorCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrorCodeTimeout            ErrorCode = "TIMEOUT"
	ErrorCodeInternalFailure    ErrorCode = "INTERNAL_FAILURE"
)

// AppError carries the HTTP status and machine code a failure is surfaced with.
type AppError struct {
	Status  int
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: ErrorCodeValidation, Message: message}
}

func NewRouteNotFoundError(airportID, zoneID int64, direction Direction) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    ErrorCodeRouteNotFound,
		Message: fmt.Sprintf("no active route for airport %d, zone %d, direction %s", airportID, zoneID, direction),
	}
}

func NewQuoteNotFoundError(searchID, code string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    ErrorCodeQuoteNotFound,
		Message: fmt.Sprintf("quote %s of search %s not found or expired", code, searchID),
	}
}

// NewCatalogUnavailableError marks a failed catalog read. Nothing was written, so callers may retry.
func NewCatalogUnavailableError(op string, err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    ErrorCodeCatalogUnavailable,
		Message: "catalog unavailable during " + op,
		Err:     err,
	}
}

func NewTimeoutError(err error) *AppError {
	return &AppError{
		Status:  http.StatusGatewayTimeout,
		Code:    ErrorCodeTimeout,
		Message: "search deadline exceeded",
		Err:     err,
	}
}

// CodeOf returns the AppError code in err's chain, or ErrorCodeInternalFailure.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalFailure
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    ErrorCodeInternalFailure,
		Message: message,
		Err:     err,
	}
}
