package server

import (
	"errors"
	"kiki/api"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"kiki/pkg/traversal"
	"net/http"
)

var (
	errInvalidImage   = errors.New("invalid image")
	errInvalidRequest = errors.New("invalid request body")

	errRequestBodyDecode = api.Error{Code: "invalid_request", Error: "Error reading request body"}
	errRequestTooLarge   = api.Error{Code: "request_too_large", Error: "Request body exceeds the server limit"}
	errImageDecode       = api.Error{Code: "invalid_image", Error: "Invalid image supplied in request body"}
	errInvalidMode       = api.Error{Code: "invalid_mode", Error: "Unknown mode, expected SEQ or RNG"}
	errUnsupportedFormat = api.Error{Code: "unsupported_format", Error: "Unsupported output format, expected png or bmp"}
	errImageTooSmall     = api.Error{Code: "image_too_small", Error: "Image has no room for a message"}
	errCapacityExceeded  = api.Error{Code: "capacity_exceeded", Error: "Image is not big enough to contain the payload"}
	errIntegrity         = api.Error{Code: "integrity_mismatch", Error: "No valid message found, the key or mode is likely wrong"}
	errMessageTooLarge   = api.Error{Code: "message_too_large", Error: "Hidden message exceeds the server limit"}
	errInternal          = api.Error{Code: "internal_error", Error: "An error occurred while processing the image"}
)

// toAPIError maps an embed or extract failure to the status and body returned to the client.
func toAPIError(err error) (int, api.Error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, errRequestTooLarge
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, errRequestBodyDecode
	case errors.Is(err, errInvalidImage):
		return http.StatusBadRequest, errImageDecode
	case errors.As(err, &traversal.UnknownModeError{}):
		return http.StatusBadRequest, errInvalidMode
	case errors.Is(err, media.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, errUnsupportedFormat
	case errors.Is(err, kikiImage.ErrImageTooSmall):
		return http.StatusBadRequest, errImageTooSmall
	case errors.Is(err, kikiImage.ErrCapacityExceeded):
		return http.StatusBadRequest, errCapacityExceeded
	case errors.Is(err, kikiImage.ErrIntegrityMismatch):
		return http.StatusUnprocessableEntity, errIntegrity
	case errors.Is(err, kikiImage.ErrUserAborted):
		return http.StatusRequestEntityTooLarge, errMessageTooLarge
	default:
		return http.StatusInternalServerError, errInternal
	}
}
