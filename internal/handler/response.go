package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the envelope every successful API reply is wrapped in
type Response struct {
	StatusCode int         `json:"statusCode"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// ErrorResponse is the envelope for error replies
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
}

// Respond writes a success envelope
func Respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
	})
}

// NewValidationError creates a bad-request error response naming the problem
func NewValidationError(c echo.Context, message string) error {
	return respondError(c, http.StatusBadRequest, message)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, message string) error {
	return respondError(c, http.StatusNotFound, message)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, message string) error {
	return respondError(c, http.StatusUnauthorized, message)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, message string) error {
	return respondError(c, http.StatusConflict, message)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, message string) error {
	return respondError(c, http.StatusInternalServerError, message)
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		StatusCode: status,
		Success:    false,
		Message:    message,
	})
}
