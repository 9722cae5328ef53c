package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
)

// CatalogLoader fetches the full question catalog from the backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Question, error)
}

// CatalogCache keeps the catalog in one Redis hash and falls back to a loader on miss.
// Layout: HSET trivia:catalog {questionID} {question JSON}
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Catalog returns every question ordered by id.
func (c *CatalogCache) Catalog(ctx context.Context) ([]domain.Question, error) {
	cached, err := c.client.HGetAll(ctx, catalogKey).Result()
	if err == nil && len(cached) > 0 {
		return decodeCatalog(cached)
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		cached, err := c.client.HGetAll(ctx, catalogKey).Result()
		if err == nil && len(cached) > 0 {
			return decodeCatalog(cached)
		}

		questions, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, questions)

		sorted := append([]domain.Question(nil), questions...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
		return sorted, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CatalogCache) Question(ctx context.Context, id string) (domain.Question, error) {
	raw, err := c.client.HGet(ctx, catalogKey, id).Bytes()
	if err == nil {
		return domain.DecodeQuestion(raw)
	}

	catalog, err := c.Catalog(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	i := sort.Search(len(catalog), func(i int) bool { return catalog[i].ID >= id })
	if i < len(catalog) && catalog[i].ID == id {
		return catalog[i], nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// Invalidate removes the cached catalog so the next read reloads it.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	c.sf.Forget(catalogKey)
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// fill writes the catalog best-effort; a failed write only costs a reload later.
func (c *CatalogCache) fill(ctx context.Context, questions []domain.Question) {
	if len(questions) == 0 {
		return
	}
	fields := make(map[string]interface{}, len(questions))
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return
		}
		fields[q.ID] = data
	}

	ttl := c.ttlWithJitter()
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, catalogKey)
	pipe.HSet(ctx, catalogKey, fields)
	if ttl > 0 {
		pipe.Expire(ctx, catalogKey, ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func decodeCatalog(cached map[string]string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(cached))
	for _, raw := range cached {
		q, err := domain.DecodeQuestion([]byte(raw))
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
