package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thinkscotty/reelhouse/internal/models"
)

type countingSource struct {
	mu    sync.Mutex
	films []models.Film
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *countingSource) ListFilms(ctx context.Context) ([]models.Film, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Film(nil), s.films...), nil
}

func (s *countingSource) set(films []models.Film) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.films = films
}

var testFilms = []models.Film{
	{Slug: "vertigo-1958", Title: "Vertigo"},
	{Slug: "casablanca-1942", Title: "Casablanca"},
}

func TestLoadIsCached(t *testing.T) {
	src := &countingSource{films: testFilms}
	c := New(src)

	for range 3 {
		films, err := c.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, testFilms, films)
	}
	require.Equal(t, int32(1), src.calls.Load())
}

func TestConcurrentFirstLoadIsCoalesced(t *testing.T) {
	src := &countingSource{films: testFilms, delay: 50 * time.Millisecond}
	c := New(src)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), src.calls.Load())
}

func TestRefreshReloads(t *testing.T) {
	src := &countingSource{films: testFilms}
	c := New(src)

	_, err := c.Load(context.Background())
	require.NoError(t, err)

	src.set(append(testFilms, models.Film{Slug: "the-general-1926", Title: "The General"}))
	films, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 2)

	require.NoError(t, c.Refresh(context.Background()))
	films, err = c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 3)
	require.Equal(t, int32(2), src.calls.Load())

	f, err := c.Get(context.Background(), "the-general-1926")
	require.NoError(t, err)
	require.Equal(t, "The General", f.Title)
}

func TestGet(t *testing.T) {
	c := New(&countingSource{films: testFilms})

	f, err := c.Get(context.Background(), "casablanca-1942")
	require.NoError(t, err)
	require.Equal(t, "Casablanca", f.Title)

	_, err = c.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("database locked")}
	c := New(src)

	_, err := c.Load(context.Background())
	require.ErrorContains(t, err, "database locked")

	src.mu.Lock()
	src.err = nil
	src.films = testFilms
	src.mu.Unlock()

	films, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 2)
}

func TestRandom(t *testing.T) {
	empty := New(&countingSource{})
	f, err := empty.Random(context.Background())
	require.NoError(t, err)
	require.Nil(t, f)

	c := New(&countingSource{films: testFilms})
	for range 20 {
		f, err := c.Random(context.Background())
		require.NoError(t, err)
		require.NotNil(t, f)
		require.Contains(t, []string{"vertigo-1958", "casablanca-1942"}, f.Slug)
	}
}

type ctxSource struct{}

func (ctxSource) ListFilms(ctx context.Context) ([]models.Film, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return testFilms, nil
}

func TestLoadSurvivesCallerCancellation(t *testing.T) {
	c := New(ctxSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	films, err := c.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, testFilms, films)

	_, err = c.Get(context.Background(), "vertigo-1958")
	require.NoError(t, err)
}
