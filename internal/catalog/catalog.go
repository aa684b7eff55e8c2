// Package catalog holds the in-memory film dataset. The dataset is loaded once,
// kept until Refresh is called, and shared by every render.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// ErrNotFound is returned when no film has the requested slug.
var ErrNotFound = errors.New("film not found")

const filmsKey = "films"

// Source loads the full film dataset. The database implements it.
type Source interface {
	ListFilms(ctx context.Context) ([]models.Film, error)
}

type Catalog struct {
	source Source
	cache  *cache.Cache
	group  singleflight.Group
}

func New(source Source) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

type snapshot struct {
	films  []models.Film
	bySlug map[string]int
}

// Load returns the cached dataset, loading it from the source on first use.
// Concurrent first loads share one source call.
func (c *Catalog) Load(ctx context.Context) ([]models.Film, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.films, nil
}

// Refresh drops the cached dataset and reloads it from the source.
func (c *Catalog) Refresh(ctx context.Context) error {
	c.cache.Delete(filmsKey)
	c.group.Forget(filmsKey)
	snap, err := c.snapshot(ctx)
	if err != nil {
		return err
	}
	slog.Info("Catalog refreshed", "films", len(snap.films))
	return nil
}

// Get returns the film with the given slug.
func (c *Catalog) Get(ctx context.Context, slug string) (models.Film, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return models.Film{}, err
	}
	i, ok := snap.bySlug[slug]
	if !ok {
		return models.Film{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return snap.films[i], nil
}

// Random returns a random film, or nil when the catalog is empty.
func (c *Catalog) Random(ctx context.Context) (*models.Film, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.films) == 0 {
		return nil, nil
	}
	f := snap.films[rand.IntN(len(snap.films))]
	return &f, nil
}

func (c *Catalog) snapshot(ctx context.Context) (*snapshot, error) {
	if v, ok := c.cache.Get(filmsKey); ok {
		return v.(*snapshot), nil
	}

	// The load is shared with other callers, so one caller's cancellation must not end it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(filmsKey, func() (any, error) {
		if v, ok := c.cache.Get(filmsKey); ok {
			return v, nil
		}
		films, err := c.source.ListFilms(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("load films: %w", err)
		}
		snap := &snapshot{films: films, bySlug: make(map[string]int, len(films))}
		for i, f := range films {
			snap.bySlug[f.Slug] = i
		}
		c.cache.Set(filmsKey, snap, cache.NoExpiration)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}
