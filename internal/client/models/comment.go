package models

import "github.com/dmitrijs2005/pinboard/internal/timex"

type Comment struct {
	ID        int64      `json:"comment_id"`
	PinID     int64      `json:"pin_id"`
	UserID    int64      `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt timex.Time `json:"created_at"`
}

// OwnerID reports the comment author.
func (c Comment) OwnerID() int64 { return c.UserID }
