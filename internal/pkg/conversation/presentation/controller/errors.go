package controller

import (
	"errors"
	"net/http"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
	"moni-chat/internal/pkg/conversation/application/usecase"
)

// statusForError maps the error taxonomy onto HTTP statuses: validation
// failures are the caller's fault, missing identity means re-authenticate,
// everything operational is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, conversation.ErrMissingIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, conversation.ErrInvalidParticipants),
		errors.Is(err, conversation.ErrEmptyMessage),
		errors.Is(err, conversation.ErrMessageTooLong):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrDirectoryLoad), errors.Is(err, usecase.ErrSendFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
