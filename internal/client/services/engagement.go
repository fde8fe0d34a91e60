package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/logging"
)

// EngagementCache holds the Liked and Saved pin sets of the current identity.
//
// Liked marks are applied locally first and then confirmed with the backend;
// Saved marks are local only. Both sets are emptied whenever the identity
// changes or the session ends.
type EngagementCache interface {
	Mark(ctx context.Context, kind models.MarkKind, pinID int64) error
	Unmark(kind models.MarkKind, pinID int64)
	IsMarked(kind models.MarkKind, pinID int64) bool
	Marked(kind models.MarkKind) []int64
	Reset()

	// Activate empties both sets and binds the cache to identityID.
	Activate(identityID int64)
	// Load replaces the Liked set with the backend's view, keeping the local
	// state of pins touched since activation.
	Load(ctx context.Context) error
}

type LikeSource interface {
	client.LikeGateway
	ListLikedPins(ctx context.Context, userID int64) ([]models.Pin, error)
}

type engagementCache struct {
	backend LikeSource
	logger  logging.Logger

	// reconcile is called after the backend rejects a like as unauthorized.
	reconcile func(context.Context) error

	mu     sync.Mutex
	owner  int64
	active bool
	epoch  uint64
	seq    uint64
	sets   map[models.MarkKind]map[int64]struct{}
	// versions records the last local touch of each liked pin since activation.
	versions map[int64]uint64
}

func NewEngagementCache(backend LikeSource, logger logging.Logger) EngagementCache {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &engagementCache{backend: backend, logger: logger}
	c.clearLocked()
	return c
}

func (c *engagementCache) setReconciler(fn func(context.Context) error) {
	c.mu.Lock()
	c.reconcile = fn
	c.mu.Unlock()
}

func (c *engagementCache) clearLocked() {
	c.sets = map[models.MarkKind]map[int64]struct{}{
		models.MarkLiked: {},
		models.MarkSaved: {},
	}
	c.versions = make(map[int64]uint64)
}

func validKind(kind models.MarkKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown mark kind %q", client.ErrValidation, kind)
	}
	return nil
}

func (c *engagementCache) Mark(ctx context.Context, kind models.MarkKind, pinID int64) error {
	if err := validKind(kind); err != nil {
		return err
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if _, ok := c.sets[kind][pinID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.sets[kind][pinID] = struct{}{}
	if kind == models.MarkSaved {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	version, epoch, owner := c.seq, c.epoch, c.owner
	c.versions[pinID] = version
	reconcile := c.reconcile
	c.mu.Unlock()

	err := c.backend.LikePin(ctx, pinID, owner)
	if err == nil || errors.Is(err, client.ErrConflict) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.mu.Lock()
	if c.epoch == epoch && c.versions[pinID] == version {
		delete(c.sets[models.MarkLiked], pinID)
		c.logger.Warn(ctx, "like rolled back", "pin_id", pinID, "err", err)
	}
	c.mu.Unlock()

	if errors.Is(err, client.ErrUnauthorized) && reconcile != nil {
		if rerr := reconcile(ctx); rerr != nil {
			c.logger.Warn(ctx, "session reconcile failed", "err", rerr)
		}
	}
	return fmt.Errorf("like pin %d: %w", pinID, err)
}

func (c *engagementCache) Unmark(kind models.MarkKind, pinID int64) {
	if !kind.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	delete(c.sets[kind], pinID)
	if kind == models.MarkLiked {
		c.seq++
		c.versions[pinID] = c.seq
	}
}

func (c *engagementCache) IsMarked(kind models.MarkKind, pinID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sets[kind][pinID]
	return ok
}

// Marked returns the ids in the set, ascending.
func (c *engagementCache) Marked(kind models.MarkKind) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := slices.Sorted(maps.Keys(c.sets[kind]))
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

func (c *engagementCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *engagementCache) resetLocked() {
	c.epoch++
	c.active = false
	c.owner = 0
	c.clearLocked()
}

func (c *engagementCache) Activate(identityID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.active = true
	c.owner = identityID
}

func (c *engagementCache) Load(ctx context.Context) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	owner, epoch := c.owner, c.epoch
	c.mu.Unlock()

	pins, err := c.backend.ListLikedPins(ctx, owner)
	if err != nil {
		return fmt.Errorf("load liked pins: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || ctx.Err() != nil {
		return ErrSuperseded
	}

	liked := make(map[int64]struct{}, len(pins))
	for _, p := range pins {
		liked[p.ID] = struct{}{}
	}
	for pinID := range c.versions {
		if _, ok := c.sets[models.MarkLiked][pinID]; ok {
			liked[pinID] = struct{}{}
		} else {
			delete(liked, pinID)
		}
	}
	c.sets[models.MarkLiked] = liked
	return nil
}
