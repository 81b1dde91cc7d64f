package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"daybook/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	Disabled
	lists  int
	events []Event
	err    error
}

func (c *countingClient) ListEvents(context.Context, time.Time, time.Time) ([]Event, error) {
	c.lists++
	return c.events, c.err
}

func (c *countingClient) DeleteEvent(context.Context, string) error { return nil }

type cacheCounter struct {
	metrics.Provider
	hits, misses int
}

func (c *cacheCounter) IncCacheHits()   { c.hits++ }
func (c *cacheCounter) IncCacheMisses() { c.misses++ }

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)

	start, end := DayBounds(now, 180)
	assert.Equal(t, time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	start, _ = DayBounds(now, -300)
	assert.Equal(t, time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC), start)
}

func TestDateBounds(t *testing.T) {
	start, end, err := DateBounds("2024-03-11", 180)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 11, 21, 0, 0, 0, time.UTC), end)

	_, _, err = DateBounds("11.03.2024", 0)
	assert.Error(t, err)
}

func TestEventFlags(t *testing.T) {
	assert.True(t, Event{Summary: "✅ Gym"}.Done())
	assert.False(t, Event{Summary: "Gym ✅"}.Done())
	assert.True(t, Event{Date: "2024-01-01"}.AllDay())
	assert.False(t, Event{Start: time.Now()}.AllDay())
}

func TestDisabled(t *testing.T) {
	var c Client = Disabled{}
	_, err := c.ListEvents(context.Background(), time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, c.DeleteEvent(context.Background(), "x"), ErrDisabled)
}

func TestCached_HitsAndInvalidation(t *testing.T) {
	next := &countingClient{events: []Event{{ID: "a", Summary: "Gym", Start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}}}
	m := &cacheCounter{Provider: metrics.Noop()}
	c := NewCached(next, 1, m, zerolog.Nop())

	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	first, err := c.ListEvents(ctx, from, to)
	require.NoError(t, err)
	second, err := c.ListEvents(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, next.lists)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)

	require.NoError(t, c.DeleteEvent(ctx, "a"))
	_, err = c.ListEvents(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, next.lists)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	next := &countingClient{err: errors.New("boom")}
	c := NewCached(next, 1, metrics.Noop(), zerolog.Nop())

	ctx := context.Background()
	from := time.Unix(0, 0)
	_, err := c.ListEvents(ctx, from, from.Add(time.Hour))
	assert.Error(t, err)
	_, err = c.ListEvents(ctx, from, from.Add(time.Hour))
	assert.Error(t, err)
	assert.Equal(t, 2, next.lists)
}

func TestNewCached_ZeroSizeReturnsNext(t *testing.T) {
	next := &countingClient{}
	assert.Same(t, next, NewCached(next, 0, metrics.Noop(), zerolog.Nop()))
}
