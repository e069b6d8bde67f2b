package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nebari-dev/quill/internal/service"
)

// Response is the success envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

// UserData wraps a user for auth responses.
type UserData struct {
	User interface{} `json:"user"`
}

// MessageData carries a confirmation message as data.
type MessageData struct {
	Message string `json:"message"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondFail(c *gin.Context, status int, message string, fields ...service.FieldError) {
	c.JSON(status, ErrorResponse{Success: false, Message: message, Errors: fields})
}

// handleServiceError maps service-layer errors to HTTP status codes. Internal
// causes are logged and never returned.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		respondFail(c, http.StatusBadRequest, validationErr.Message, validationErr.Fields...)
		return
	}
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		respondFail(c, http.StatusBadRequest, conflictErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		respondFail(c, http.StatusUnauthorized, "Not authorized to access this route")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondFail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		respondFail(c, http.StatusForbidden, reason(err, "Forbidden"))
	case errors.Is(err, service.ErrNotFound):
		respondFail(c, http.StatusNotFound, reason(err, "Not found"))
	default:
		slog.Error("unhandled service error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		respondFail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// reason returns the caller-facing text of a sentinel-backed error, or
// fallback for a bare sentinel.
func reason(err error, fallback string) string {
	if errors.Unwrap(err) == nil {
		return fallback
	}
	return err.Error()
}

// bindJSON decodes the request body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		respondFail(c, http.StatusBadRequest, "Validation failed", service.FieldError{
			Field:   field,
			Message: capitalize(field) + " must be " + jsonKind(typeErr.Type),
		})
	case errors.Is(err, io.EOF):
		respondFail(c, http.StatusBadRequest, "Validation failed", service.FieldError{Field: "body", Message: "Request body is required"})
	default:
		respondFail(c, http.StatusBadRequest, "Validation failed", service.FieldError{Field: "body", Message: "Invalid JSON body"})
	}
	return false
}

// pathID parses the :id parameter, answering 400 when it is not a UUID.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "Validation failed", service.FieldError{
			Field:   "id",
			Message: "Invalid " + what + " ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// jsonKind names the JSON value a Go type decodes from.
func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	default:
		return "an object"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
