package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrorResponse is the JSON envelope returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrUnauthenticated is returned by stores when no user is present in the
// request context. Operations refuse to touch the gateway in that case.
var ErrUnauthenticated = errors.New("user not authenticated")

// ErrMutationInFlight is returned when a mutation targets a record that
// already has an outstanding mutation. The caller should retry after the
// first operation settles.
var ErrMutationInFlight = errors.New("another mutation for this record is in flight")

// ValidationError rejects a request before any gateway call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GatewayError wraps a failure returned by the data gateway. The local
// collection is left untouched when one occurs.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// UploadError wraps a media host failure. It aborts the surrounding
// transaction mutation before the gateway is called.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("media upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// WriteError maps a tagged error to its HTTP status and writes the JSON
// error envelope.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: err.Error()}

	var validationErr *ValidationError
	var uploadErr *UploadError
	var gatewayErr *GatewayError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrMutationInFlight):
		status = http.StatusConflict
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		body.Field = validationErr.Field
	case errors.As(err, &uploadErr):
		status = http.StatusBadGateway
	case errors.As(err, &gatewayErr):
		status = http.StatusInternalServerError
	}

	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		log.Errorf("failed to encode error response: %v", encodeErr)
	}
}
