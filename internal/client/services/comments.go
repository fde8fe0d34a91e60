package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/client/ownership"
	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/logging"
)

type CommentService interface {
	List(ctx context.Context, pinID int64) ([]models.Comment, error)
	Create(ctx context.Context, pinID int64, content string) (*models.Comment, error)
	Update(ctx context.Context, comment models.Comment, content string) (*models.Comment, error)
	Delete(ctx context.Context, comment models.Comment) error
}

type commentService struct {
	backend client.CommentGateway
	session SessionStore
	logger  logging.Logger
}

func NewCommentService(backend client.CommentGateway, session SessionStore, logger logging.Logger) CommentService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &commentService{backend: backend, session: session, logger: logger}
}

func (s *commentService) List(ctx context.Context, pinID int64) ([]models.Comment, error) {
	return s.backend.ListComments(ctx, pinID)
}

func (s *commentService) reconcileOn(ctx context.Context, err error) {
	if !errors.Is(err, client.ErrUnauthorized) {
		return
	}
	if rerr := s.session.Reconcile(ctx); rerr != nil {
		s.logger.Warn(ctx, "session reconcile failed", "err", rerr)
	}
}

func (s *commentService) Create(ctx context.Context, pinID int64, content string) (*models.Comment, error) {
	me := s.session.Current()
	if me == nil {
		return nil, ErrNotAuthenticated
	}
	content, err := common.Required("comment", content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}

	c, err := s.backend.CreateComment(ctx, pinID, me.ID, content)
	if err != nil {
		s.reconcileOn(ctx, err)
		return nil, fmt.Errorf("comment on pin %d: %w", pinID, err)
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, comment models.Comment, content string) (*models.Comment, error) {
	me := s.session.Current()
	if err := ownership.Check(me, comment); err != nil {
		return nil, err
	}
	content, err := common.Required("comment", content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}

	c, err := s.backend.UpdateComment(ctx, comment.ID, me.ID, content)
	if err != nil {
		s.reconcileOn(ctx, err)
		return nil, fmt.Errorf("update comment %d: %w", comment.ID, err)
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, comment models.Comment) error {
	me := s.session.Current()
	if err := ownership.Check(me, comment); err != nil {
		return err
	}

	if err := s.backend.DeleteComment(ctx, comment.ID, me.ID); err != nil {
		s.reconcileOn(ctx, err)
		return fmt.Errorf("delete comment %d: %w", comment.ID, err)
	}
	return nil
}
