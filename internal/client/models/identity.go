// Package models defines the client-side data models of the pinboard client.
package models

import "github.com/dmitrijs2005/pinboard/internal/timex"

// Identity is the authenticated user record for the current session.
type Identity struct {
	ID          int64      `json:"user_id"`
	DisplayName string     `json:"username"`
	Email       string     `json:"email"`
	CreatedAt   timex.Time `json:"created_at"`
}

// Clone returns a copy that callers may keep without aliasing session state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// LoginResult is what the backend returns for a successful login.
type LoginResult struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}
