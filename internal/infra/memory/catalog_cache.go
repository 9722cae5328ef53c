package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

const catalogKey = "catalog"

// CatalogLoader fetches the full question catalog from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Question, error)
}

// CatalogCache caches the catalog with a TTL to avoid a store round trip per question.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	entry *cachedCatalog
}

type cachedCatalog struct {
	questions []domain.Question
	byID      map[string]domain.Question
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Catalog returns every question ordered by id. Callers must treat the slice as read-only.
func (c *CatalogCache) Catalog(ctx context.Context) ([]domain.Question, error) {
	entry, err := c.get(ctx)
	if err != nil {
		return nil, err
	}
	return entry.questions, nil
}

func (c *CatalogCache) Question(ctx context.Context, id string) (domain.Question, error) {
	entry, err := c.get(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	q, ok := entry.byID[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

// Invalidate drops the cached catalog; the next read reloads it.
func (c *CatalogCache) Invalidate(_ context.Context) error {
	c.sf.Forget(catalogKey)
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	return nil
}

func (c *CatalogCache) get(ctx context.Context) (*cachedCatalog, error) {
	if entry := c.fresh(c.clock()); entry != nil {
		return entry, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		now := c.clock()
		if entry := c.fresh(now); entry != nil {
			return entry, nil
		}

		questions, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		entry := buildCatalog(questions)

		c.mu.Lock()
		entry.expiresAt = now.Add(c.ttlWithJitterLocked())
		c.entry = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*cachedCatalog), nil
}

func (c *CatalogCache) fresh(now time.Time) *cachedCatalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry != nil && c.entry.expiresAt.After(now) {
		return c.entry
	}
	return nil
}

func buildCatalog(questions []domain.Question) *cachedCatalog {
	sorted := append([]domain.Question(nil), questions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	byID := make(map[string]domain.Question, len(sorted))
	for _, q := range sorted {
		byID[q.ID] = q
	}
	return &cachedCatalog{questions: sorted, byID: byID}
}

func (c *CatalogCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
