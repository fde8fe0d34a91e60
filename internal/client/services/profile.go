package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"golang.org/x/sync/errgroup"
)

// Profile is the current identity with its own and liked pins.
type Profile struct {
	Identity *models.Identity
	Pins     []models.Pin
	Liked    []models.Pin
}

func (s *pinService) LoadProfile(ctx context.Context) (*Profile, error) {
	me := s.session.Current()
	if me == nil {
		return nil, ErrNotAuthenticated
	}

	p := &Profile{Identity: me}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pins, err := s.backend.ListUserPins(gctx, me.ID)
		if err != nil {
			return fmt.Errorf("load own pins: %w", err)
		}
		p.Pins = pins
		return nil
	})
	g.Go(func() error {
		pins, err := s.backend.ListLikedPins(gctx, me.ID)
		if err != nil {
			return fmt.Errorf("load liked pins: %w", err)
		}
		p.Liked = pins
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}
