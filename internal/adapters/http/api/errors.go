package api

import (
	"errors"
	"net/http"

	service "github.com/okian/abalone/internal/app"
	"github.com/okian/abalone/internal/domain/scoring"
)

// Client-facing error messages. Internal causes are only logged.
const (
	msgInvalidForm    = "Invalid form data"
	msgTooLarge       = "Upload too large"
	msgMissingFields  = "Missing fields"
	msgWrongFormat    = "Only .csv files are allowed"
	msgTooManyMembers = "Too many team members"
	msgRateLimited    = "Daily submission limit reached"
	msgInvalidFile    = "Invalid submission file"
	msgInternal       = "Internal server error"
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// ErrInvalidForm marks a multipart body that could not be read.
var ErrInvalidForm = errors.New("invalid form data")

type errorResponse struct {
	Error string `json:"error"`
}

// classify maps an upload error to its status code and public message.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest, msgInvalidForm
	case errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, service.ErrWrongFormat):
		return http.StatusBadRequest, msgWrongFormat
	case errors.Is(err, service.ErrTooManyMembers):
		return http.StatusBadRequest, msgTooManyMembers
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, scoring.ErrValidation):
		return http.StatusBadRequest, msgInvalidFile
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
