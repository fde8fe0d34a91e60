package models

import "github.com/dmitrijs2005/pinboard/internal/timex"

// Pin is a transient copy of a backend-owned pin.
type Pin struct {
	ID        int64      `json:"pin_id"`
	UserID    int64      `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Image     string     `json:"image,omitempty"`
	CreatedAt timex.Time `json:"created_at"`
}

// OwnerID reports the identity allowed to mutate the pin.
func (p Pin) OwnerID() int64 { return p.UserID }

// HasImage reports whether the pin carries an image reference.
func (p Pin) HasImage() bool { return p.Image != "" }

// PinDraft carries user input for creating or editing a pin.
// ImagePath, when set, names a local file to upload.
type PinDraft struct {
	Title     string
	Content   string
	ImagePath string
}
