package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/client/ownership"
	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/filex"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/dmitrijs2005/pinboard/internal/netx"
)

// PinService reads pins and applies the current identity's changes to them.
type PinService interface {
	List(ctx context.Context) ([]models.Pin, error)
	Get(ctx context.Context, pinID int64) (*models.Pin, error)
	Search(ctx context.Context, query string) ([]models.Pin, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.Pin, error)
	ListLiked(ctx context.Context, userID int64) ([]models.Pin, error)

	Create(ctx context.Context, draft models.PinDraft) (*models.Pin, error)
	Update(ctx context.Context, pin models.Pin, draft models.PinDraft) (*models.Pin, error)
	Delete(ctx context.Context, pin models.Pin) error

	// LoadProfile fetches the current identity's own and liked pins.
	LoadProfile(ctx context.Context) (*Profile, error)
	// ImageURL resolves the pin's image reference against the server URL.
	ImageURL(pin models.Pin) string
}

// PinBackend is the part of the backend the pin service talks to.
type PinBackend interface {
	client.PinGateway
	ListUserPins(ctx context.Context, userID int64) ([]models.Pin, error)
	ListLikedPins(ctx context.Context, userID int64) ([]models.Pin, error)
}

type pinService struct {
	backend   PinBackend
	session   SessionStore
	cache     EngagementCache
	serverURL string
	logger    logging.Logger

	openImage func(path string) (io.ReadCloser, string, error)
}

func NewPinService(backend PinBackend, session SessionStore, cache EngagementCache, serverURL string, logger logging.Logger) PinService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &pinService{
		backend:   backend,
		session:   session,
		cache:     cache,
		serverURL: serverURL,
		logger:    logger,
		openImage: func(path string) (io.ReadCloser, string, error) {
			return filex.OpenRegular(path)
		},
	}
}

func (s *pinService) List(ctx context.Context) ([]models.Pin, error) {
	return s.backend.ListPins(ctx)
}

func (s *pinService) Get(ctx context.Context, pinID int64) (*models.Pin, error) {
	return s.backend.GetPin(ctx, pinID)
}

// Search lists every pin when query is blank.
func (s *pinService) Search(ctx context.Context, query string) ([]models.Pin, error) {
	q, err := common.Required("query", query)
	if err != nil {
		return s.backend.ListPins(ctx)
	}
	return s.backend.SearchPins(ctx, q)
}

func (s *pinService) ListByOwner(ctx context.Context, userID int64) ([]models.Pin, error) {
	return s.backend.ListUserPins(ctx, userID)
}

func (s *pinService) ListLiked(ctx context.Context, userID int64) ([]models.Pin, error) {
	return s.backend.ListLikedPins(ctx, userID)
}

func (s *pinService) ImageURL(pin models.Pin) string {
	return netx.ResolveURL(s.serverURL, pin.Image)
}

// form validates draft. The returned closer must be called once the request
// is sent.
func (s *pinService) form(draft models.PinDraft) (client.PinForm, func(), error) {
	noop := func() {}

	title, err := common.Required("title", draft.Title)
	if err != nil {
		return client.PinForm{}, noop, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}
	content, err := common.Required("content", draft.Content)
	if err != nil {
		return client.PinForm{}, noop, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}

	f := client.PinForm{Title: title, Content: content}
	if draft.ImagePath == "" {
		return f, noop, nil
	}

	rc, name, err := s.openImage(draft.ImagePath)
	if err != nil {
		return client.PinForm{}, noop, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}
	f.Image = &client.ImageUpload{FileName: name, Data: rc}
	return f, func() { _ = rc.Close() }, nil
}

// afterMutation lets the session re-check itself when the backend refused a
// change the local guard allowed.
func (s *pinService) afterMutation(ctx context.Context, err error) {
	if !errors.Is(err, client.ErrUnauthorized) {
		return
	}
	if rerr := s.session.Reconcile(ctx); rerr != nil {
		s.logger.Warn(ctx, "session reconcile failed", "err", rerr)
	}
}

func (s *pinService) Create(ctx context.Context, draft models.PinDraft) (*models.Pin, error) {
	me := s.session.Current()
	if me == nil {
		return nil, ErrNotAuthenticated
	}

	f, done, err := s.form(draft)
	if err != nil {
		return nil, err
	}
	defer done()

	pin, err := s.backend.CreatePin(ctx, me.ID, f)
	if err != nil {
		s.afterMutation(ctx, err)
		return nil, fmt.Errorf("create pin: %w", err)
	}
	return pin, nil
}

func (s *pinService) Update(ctx context.Context, pin models.Pin, draft models.PinDraft) (*models.Pin, error) {
	me := s.session.Current()
	if err := ownership.Check(me, pin); err != nil {
		return nil, err
	}

	f, done, err := s.form(draft)
	if err != nil {
		return nil, err
	}
	defer done()

	updated, err := s.backend.UpdatePin(ctx, pin.ID, me.ID, f)
	if err != nil {
		s.afterMutation(ctx, err)
		return nil, fmt.Errorf("update pin %d: %w", pin.ID, err)
	}
	return updated, nil
}

func (s *pinService) Delete(ctx context.Context, pin models.Pin) error {
	me := s.session.Current()
	if err := ownership.Check(me, pin); err != nil {
		return err
	}

	if err := s.backend.DeletePin(ctx, pin.ID, me.ID); err != nil {
		s.afterMutation(ctx, err)
		return fmt.Errorf("delete pin %d: %w", pin.ID, err)
	}
	s.cache.Unmark(models.MarkLiked, pin.ID)
	s.cache.Unmark(models.MarkSaved, pin.ID)
	return nil
}
