package gallery

import (
	"context"
	"sync"
	"time"

	"cafe-media/internal/domain"

	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/singleflight"
)

type key struct {
	cafeID string
	kind   domain.PhotoKind
}

func (k key) String() string {
	return k.cafeID + "\x00" + string(k.kind)
}

type entry struct {
	photos   []domain.PhotoRecord
	cachedAt time.Time
}

type GetOption func(*getOptions)

type getOptions struct {
	force  bool
	maxAge time.Duration
}

// WithForce skips the cached entry. Concurrent forced reads still share one fetch.
func WithForce() GetOption {
	return func(o *getOptions) { o.force = true }
}

func WithMaxAge(maxAge time.Duration) GetOption {
	return func(o *getOptions) { o.maxAge = maxAge }
}

// Cache is a process-lifetime read cache for café photo lists keyed by
// (cafe, kind). Every slice it hands out is a fresh copy.
type Cache struct {
	fetcher photoLister
	ttl     time.Duration
	now     func() time.Time
	logger  *zlog.Zerolog

	// generation changes on every Set and Invalidate and epoch on Clear; a
	// fetch that started under older values does not get to store its result.
	mu         sync.Mutex
	entries    map[key]entry
	generation map[key]uint64
	epoch      uint64
	// inflight counts running fetches per key so Clear can forget them too.
	inflight map[key]int
	group    singleflight.Group
}

func NewCache(fetcher photoLister, ttl time.Duration, logger *zlog.Zerolog) *Cache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &Cache{
		fetcher:    fetcher,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
		entries:    make(map[key]entry),
		generation: make(map[key]uint64),
		inflight:   make(map[key]int),
	}
}

// Get returns the photo list for (cafeID, kind). A cancelled ctx stops this
// caller from waiting but never cancels a fetch other callers share.
func (c *Cache) Get(ctx context.Context, cafeID string, kind domain.PhotoKind, opts ...GetOption) ([]domain.PhotoRecord, error) {
	o := getOptions{maxAge: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	k := key{cafeID: cafeID, kind: kind}

	if !o.force {
		if photos, ok := c.lookup(k, o.maxAge); ok {
			return photos, nil
		}
	}

	ch := c.group.DoChan(k.String(), func() (any, error) {
		return c.fetch(ctx, k)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.ClonePhotos(res.Val.([]domain.PhotoRecord)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context, k key) ([]domain.PhotoRecord, error) {
	c.mu.Lock()
	gen, epoch := c.generation[k], c.epoch
	c.inflight[k]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[k]--; c.inflight[k] <= 0 {
			delete(c.inflight, k)
		}
		c.mu.Unlock()
	}()

	photos, err := c.fetcher.ListPhotos(context.WithoutCancel(ctx), k.cafeID, k.kind)
	if err != nil {
		c.logger.Warn().Err(err).Str("cafe_id", k.cafeID).Str("kind", string(k.kind)).Msg("Photo list fetch failed")
		return nil, err
	}

	photos = domain.ClonePhotos(photos)

	c.mu.Lock()
	if c.generation[k] == gen && c.epoch == epoch {
		c.entries[k] = entry{photos: photos, cachedAt: c.now()}
	}
	c.mu.Unlock()

	return photos, nil
}

func (c *Cache) lookup(k key, maxAge time.Duration) ([]domain.PhotoRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.cachedAt) >= maxAge {
		return nil, false
	}
	return domain.ClonePhotos(e.photos), true
}

// Set stores an authoritative list, such as a mutation response.
func (c *Cache) Set(cafeID string, kind domain.PhotoKind, photos []domain.PhotoRecord) {
	k := key{cafeID: cafeID, kind: kind}

	c.mu.Lock()
	c.generation[k]++
	c.entries[k] = entry{photos: domain.ClonePhotos(photos), cachedAt: c.now()}
	c.mu.Unlock()

	c.group.Forget(k.String())
}

// Invalidate drops the entry so the next Get goes to the network.
func (c *Cache) Invalidate(cafeID string, kind domain.PhotoKind) {
	k := key{cafeID: cafeID, kind: kind}

	c.mu.Lock()
	c.generation[k]++
	delete(c.entries, k)
	c.mu.Unlock()

	c.group.Forget(k.String())
}

// Clear drops everything, e.g. when the session ends. Fetches still running
// are detached, so the next Get for their key starts a new one.
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := make([]key, 0, len(c.entries)+len(c.inflight))
	for k := range c.entries {
		keys = append(keys, k)
	}
	for k := range c.inflight {
		if _, ok := c.entries[k]; !ok {
			keys = append(keys, k)
		}
	}
	c.epoch++
	c.entries = make(map[key]entry)
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k.String())
	}
}
