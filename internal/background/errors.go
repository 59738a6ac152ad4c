package background

import (
	"context"
	"errors"
	"net/http"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/gateway"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/oauth"
)

// toErrorResponse converts a handler failure into the error variant of kind
func toErrorResponse(kind messages.Type, err error) *messages.ErrorResponse {
	var gerr *gateway.Error
	var er *messages.ErrorResponse

	switch {
	case errors.As(err, &er):
		out := *er
		out.Of = kind
		return &out
	case errors.As(err, &gerr):
		return messages.Failed(kind, gerr.StatusCode, gerr.Message, "")
	case errors.Is(err, oauth.ErrUserCancelled):
		return messages.Failed(kind, http.StatusBadRequest, oauth.ErrUserCancelled.Error(), messages.CodeUserCancelled)
	case errors.Is(err, oauth.ErrBetaAccessRequired):
		return messages.Failed(kind, http.StatusForbidden, oauth.ErrBetaAccessRequired.Error(), messages.CodeBetaAccessRequired)
	case errors.Is(err, oauth.ErrSecurityValidation):
		return messages.Failed(kind, http.StatusBadRequest, oauth.ErrSecurityValidation.Error(), messages.CodeSecurityValidation)
	case errors.Is(err, oauth.ErrSignInInProgress):
		return messages.Failed(kind, http.StatusConflict, oauth.ErrSignInInProgress.Error(), messages.CodeSignInInProgress)
	case errors.Is(err, oauth.ErrSignInFailed):
		return messages.Failed(kind, http.StatusInternalServerError, oauth.ErrSignInFailed.Error(), "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return messages.Failed(kind, gateway.StatusTransport, gateway.MsgConnection, "")
	default:
		return messages.Failed(kind, http.StatusInternalServerError, gateway.MsgGeneric, messages.CodeInternal)
	}
}

// invalidRequest is the reply to a recognized tag whose body failed to
// decode or validate
func invalidRequest(kind messages.Type, reason string) *messages.ErrorResponse {
	return messages.Failed(kind, http.StatusBadRequest, "Invalid request: "+reason, messages.CodeInvalidRequest)
}
