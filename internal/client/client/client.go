package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/pinboard/internal/client/models"
)

// UserGateway covers account and profile endpoints.
type UserGateway interface {
	Signup(ctx context.Context, email, username, password string) (*models.Identity, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	GetUser(ctx context.Context, userID int64) (*models.Identity, error)
	UpdateUser(ctx context.Context, userID int64, username string) (*models.Identity, error)
	ListUserPins(ctx context.Context, userID int64) ([]models.Pin, error)
	ListLikedPins(ctx context.Context, userID int64) ([]models.Pin, error)
}

// PinGateway covers pin listing and mutation. Mutations carry the acting
// user id so the backend can enforce ownership.
type PinGateway interface {
	ListPins(ctx context.Context) ([]models.Pin, error)
	GetPin(ctx context.Context, pinID int64) (*models.Pin, error)
	SearchPins(ctx context.Context, query string) ([]models.Pin, error)
	CreatePin(ctx context.Context, userID int64, form PinForm) (*models.Pin, error)
	UpdatePin(ctx context.Context, pinID, userID int64, form PinForm) (*models.Pin, error)
	DeletePin(ctx context.Context, pinID, userID int64) error
}

type LikeGateway interface {
	LikePin(ctx context.Context, pinID, userID int64) error
}

type CommentGateway interface {
	ListComments(ctx context.Context, pinID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, pinID, userID int64, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID, userID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID int64) error
}

// Client is the full backend contract used by the pinboard client.
type Client interface {
	UserGateway
	PinGateway
	LikeGateway
	CommentGateway
	Close() error
}

// PinForm is the multipart payload of pin create/update. Empty Title or
// Content are omitted from the request; Image is optional.
type PinForm struct {
	Title   string
	Content string
	Image   *ImageUpload
}

// ImageUpload is an image part of a multipart pin request.
type ImageUpload struct {
	FileName string
	Data     io.Reader
}
