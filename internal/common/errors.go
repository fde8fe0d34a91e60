package common

import "errors"

var (
	// Session errors.
	ErrNotAuthenticated = errors.New("not logged in")
	ErrForbidden        = errors.New("not the owner")

	// ErrSuperseded marks a response that arrived after a newer request or a
	// session change replaced the one that issued it.
	ErrSuperseded = errors.New("superseded")

	// ErrBlankField reports required text input that is empty after trimming.
	ErrBlankField = errors.New("must not be blank")
)
