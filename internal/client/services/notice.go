package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/common"
)

// Notice renders err as the single line shown to the user.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, ErrSuperseded):
		return "Cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to answer. Please try again."
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, ErrForbidden):
		return "You can only change your own pins and comments."
	case errors.Is(err, client.ErrUnauthorized):
		return "The server refused this action."
	case errors.Is(err, client.ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, client.ErrConflict):
		return "Already exists: " + detail(err, client.ErrConflict)
	case errors.Is(err, client.ErrValidation):
		return "Invalid input: " + detail(err, client.ErrValidation)
	case errors.Is(err, common.ErrBlankField):
		return "Invalid input: " + err.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "The server is unavailable. Please try again later."
	default:
		return "Something went wrong: " + err.Error()
	}
}

// detail returns what follows the sentinel's text in err's message, which is
// the backend's or the validator's explanation.
func detail(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
