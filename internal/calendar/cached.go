package calendar

import (
	"context"
	"strconv"
	"time"

	"daybook/internal/metrics"

	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// CacheTTL bounds how stale a cached event listing may get.
const CacheTTL = 60 * time.Second

// Cached memoizes ListEvents per time window. Any write through it clears
// the whole cache.
type Cached struct {
	next    Client
	cache   *freecache.Cache
	ttl     int
	metrics metrics.Provider
	log     zerolog.Logger
}

// NewCached wraps next with a cache of sizeMB megabytes. A non-positive size
// returns next unchanged.
func NewCached(next Client, sizeMB int, m metrics.Provider, log zerolog.Logger) Client {
	if sizeMB <= 0 {
		log.Info().Msg("calendar cache disabled")
		return next
	}
	log.Info().Int("sizeMB", sizeMB).Dur("ttl", CacheTTL).Msg("calendar cache initialized")
	return &Cached{
		next:    next,
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:     int(CacheTTL.Seconds()),
		metrics: m,
		log:     log,
	}
}

func windowKey(timeMin, timeMax time.Time) []byte {
	return []byte(strconv.FormatInt(timeMin.Unix(), 10) + ":" + strconv.FormatInt(timeMax.Unix(), 10))
}

func (c *Cached) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	key := windowKey(timeMin, timeMax)
	if raw, err := c.cache.Get(key); err == nil {
		var events []Event
		if err := json.Unmarshal(raw, &events); err == nil {
			c.metrics.IncCacheHits()
			return events, nil
		}
	}
	c.metrics.IncCacheMisses()

	events, err := c.next.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(events); err == nil {
		if err := c.cache.Set(key, raw, c.ttl); err != nil {
			c.log.Debug().Err(err).Msg("calendar cache set")
		}
	}
	return events, nil
}

func (c *Cached) GetEvent(ctx context.Context, id string) (*Event, error) {
	return c.next.GetEvent(ctx, id)
}

func (c *Cached) InsertEvent(ctx context.Context, ev NewEvent) (*Event, error) {
	defer c.cache.Clear()
	return c.next.InsertEvent(ctx, ev)
}

func (c *Cached) PatchEvent(ctx context.Context, id string, p EventPatch) (*Event, error) {
	defer c.cache.Clear()
	return c.next.PatchEvent(ctx, id, p)
}

func (c *Cached) DeleteEvent(ctx context.Context, id string) error {
	defer c.cache.Clear()
	return c.next.DeleteEvent(ctx, id)
}
