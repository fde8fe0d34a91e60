package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/pinboard/internal/client/models"
)

// Feed keeps the pin list currently on screen. Only the response to the most
// recent request may replace it; older ones return ErrSuperseded.
type Feed interface {
	Refresh(ctx context.Context) ([]models.Pin, error)
	Search(ctx context.Context, query string) ([]models.Pin, error)
	// Current returns the last accepted list and the query that produced it.
	Current() ([]models.Pin, string)
}

type feed struct {
	pins PinService

	mu      sync.Mutex
	seq     uint64
	current []models.Pin
	query   string
}

func NewFeed(pins PinService) Feed {
	return &feed{pins: pins}
}

func (f *feed) Refresh(ctx context.Context) ([]models.Pin, error) {
	return f.run(ctx, "", f.pins.List)
}

func (f *feed) Search(ctx context.Context, query string) ([]models.Pin, error) {
	query = strings.TrimSpace(query)
	return f.run(ctx, query, func(ctx context.Context) ([]models.Pin, error) {
		return f.pins.Search(ctx, query)
	})
}

func (f *feed) run(ctx context.Context, query string, fetch func(context.Context) ([]models.Pin, error)) ([]models.Pin, error) {
	f.mu.Lock()
	f.seq++
	mine := f.seq
	f.mu.Unlock()

	pins, err := fetch(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if mine != f.seq || ctx.Err() != nil {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	f.current = pins
	f.query = query
	return slices.Clone(pins), nil
}

func (f *feed) Current() ([]models.Pin, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.current), f.query
}
