package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/sethvargo/go-retry"
)

// SessionStore owns the current identity. It is either anonymous or
// authenticated; every transition goes through its methods.
//
// Operations that call the backend run one at a time. Logout never waits for
// them: a result that lands after a logout is dropped with ErrSuperseded.
type SessionStore interface {
	// RestoreSession re-establishes the identity named by the persisted
	// reference. Failures are logged and leave the session anonymous.
	RestoreSession(ctx context.Context) (*models.Identity, bool)
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Signup(ctx context.Context, email, displayName, password string) (*models.Identity, error)
	UpdateDisplayName(ctx context.Context, name string) (*models.Identity, error)
	Logout(ctx context.Context)

	// Current returns a copy of the identity, or nil when anonymous.
	Current() *models.Identity
	IsAuthenticated() bool

	// Reconcile re-checks the identity after the backend rejected one of its
	// mutations. A vanished or rejected identity ends the session.
	Reconcile(ctx context.Context) error
}

type sessionStore struct {
	users  client.UserGateway
	refs   ReferenceStore
	cache  EngagementCache
	logger logging.Logger

	opMu sync.Mutex

	mu       sync.Mutex
	identity *models.Identity
	epoch    uint64

	loadBackoff func() retry.Backoff
}

func defaultLoadBackoff() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
}

func NewSessionStore(users client.UserGateway, refs ReferenceStore, cache EngagementCache, logger logging.Logger) SessionStore {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &sessionStore{users: users, refs: refs, cache: cache, logger: logger, loadBackoff: defaultLoadBackoff}
	if rs, ok := cache.(interface {
		setReconciler(func(context.Context) error)
	}); ok {
		rs.setReconciler(s.Reconcile)
	}
	return s
}

func (s *sessionStore) Current() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Clone()
}

func (s *sessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

func (s *sessionStore) snapshot() (*models.Identity, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Clone(), s.epoch
}

// establish makes ident the current identity if no transition happened since
// epoch was read. With persist set the reference is written first; a failed
// write leaves the session untouched.
func (s *sessionStore) establish(ctx context.Context, epoch uint64, ident *models.Identity, persist bool) (*models.Identity, error) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if persist {
		if err := s.refs.Save(ctx, ident.ID); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	switching := s.identity == nil || s.identity.ID != ident.ID
	if switching {
		s.cache.Activate(ident.ID)
	}
	s.identity = ident.Clone()
	s.epoch++
	s.mu.Unlock()

	if switching {
		if err := s.loadLiked(ctx); err != nil {
			s.logger.Warn(ctx, "liked pins not loaded", "user_id", ident.ID, "err", err)
		}
	}
	return ident.Clone(), nil
}

// loadLiked fills the cache from the backend, retrying while it is unavailable.
func (s *sessionStore) loadLiked(ctx context.Context) error {
	return retry.Do(ctx, s.loadBackoff(), func(ctx context.Context) error {
		err := s.cache.Load(ctx)
		if errors.Is(err, client.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *sessionStore) RestoreSession(ctx context.Context) (*models.Identity, bool) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur, epoch := s.snapshot()
	if cur != nil {
		return cur, true
	}

	id, ok, err := s.refs.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "session reference unreadable", "err", err)
		s.discardReference(ctx, epoch)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	ident, err := s.users.GetUser(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false
		}
		s.logger.Warn(ctx, "session restore failed", "user_id", id, "err", err)
		s.discardReference(ctx, epoch)
		return nil, false
	}

	restored, err := s.establish(ctx, epoch, ident, false)
	if err != nil {
		s.logger.Info(ctx, "session restore discarded", "user_id", id, "err", err)
		return nil, false
	}
	s.logger.Info(ctx, "session restored", "user_id", restored.ID)
	return restored, true
}

// discardReference clears the persisted reference unless the session moved on.
func (s *sessionStore) discardReference(ctx context.Context, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	if err := s.refs.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "session reference not cleared", "err", err)
	}
}

func (s *sessionStore) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	email, err := common.Required("email", email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password %w", client.ErrValidation, common.ErrBlankField)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	_, epoch := s.snapshot()

	res, err := s.users.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ident, err := s.users.GetUser(ctx, res.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	out, err := s.establish(ctx, epoch, ident, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "logged in", "user_id", out.ID)
	return out, nil
}

func (s *sessionStore) Signup(ctx context.Context, email, displayName, password string) (*models.Identity, error) {
	email, err := common.Required("email", email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}
	displayName, err = common.Required("username", displayName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password %w", client.ErrValidation, common.ErrBlankField)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	_, epoch := s.snapshot()

	ident, err := s.users.Signup(ctx, email, displayName, password)
	if err != nil {
		return nil, err
	}

	out, err := s.establish(ctx, epoch, ident, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "signed up", "user_id", out.ID)
	return out, nil
}

func (s *sessionStore) UpdateDisplayName(ctx context.Context, name string) (*models.Identity, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur, epoch := s.snapshot()
	if cur == nil {
		return nil, ErrNotAuthenticated
	}
	name, err := common.Required("username", name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", client.ErrValidation, err)
	}

	updated, err := s.users.UpdateUser(ctx, cur.ID, name)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if rerr := s.reconcile(ctx); rerr != nil {
				s.logger.Warn(ctx, "session reconcile failed", "err", rerr)
			}
		}
		return nil, err
	}
	if updated.DisplayName != "" {
		name = updated.DisplayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.identity == nil || s.identity.ID != cur.ID {
		return nil, ErrSuperseded
	}
	s.identity.DisplayName = name
	s.epoch++
	return s.identity.Clone(), nil
}

func (s *sessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(ctx)
	s.logger.Info(ctx, "logged out")
}

func (s *sessionStore) dropLocked(ctx context.Context) {
	s.epoch++
	s.identity = nil
	s.cache.Reset()
	if err := s.refs.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "session reference not cleared", "err", err)
	}
}

func (s *sessionStore) Reconcile(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.reconcile(ctx)
}

func (s *sessionStore) reconcile(ctx context.Context) error {
	cur, epoch := s.snapshot()
	if cur == nil {
		return nil
	}

	fresh, err := s.users.GetUser(ctx, cur.ID)
	if err != nil && !errors.Is(err, client.ErrNotFound) && !errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("reconcile session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	if err != nil {
		s.logger.Warn(ctx, "session rejected by backend", "user_id", cur.ID, "err", err)
		s.dropLocked(ctx)
		return nil
	}
	if fresh.ID != cur.ID {
		return fmt.Errorf("reconcile session: backend returned user %d for %d", fresh.ID, cur.ID)
	}
	s.identity = fresh.Clone()
	s.epoch++
	return nil
}
