package client

import "errors"

// Backend failures are folded into these sentinels. Callers match them with
// errors.Is; the wrapping error may carry the backend's detail message.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrUnavailable        = errors.New("server unavailable")
)
