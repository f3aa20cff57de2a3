package notion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/httpx"
)

const codeValidation = "validation_error"

// APIError is the error object Notion returns with non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("notion api %d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("notion api %d %s: %s", e.Status, e.Code, e.Message)
}

// IsSchemaMismatch reports whether err is a query rejection caused by the
// request itself, such as a filter naming a property the database does not have.
func IsSchemaMismatch(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest && apiErr.Code == codeValidation
}

// asAPIError converts a transport status error into an *APIError when the body
// is a Notion error object. Other errors are returned unchanged.
func asAPIError(err error) error {
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	var apiErr APIError
	if decodeErr := json.Unmarshal([]byte(statusErr.Body), &apiErr); decodeErr != nil || apiErr.Code == "" {
		return err
	}
	if apiErr.Status == 0 {
		apiErr.Status = statusErr.StatusCode
	}
	return &apiErr
}

// IsUnauthorized reports whether the API key was rejected, with or without a
// Notion error body.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}
	return httpx.IsStatus(err, http.StatusUnauthorized)
}
