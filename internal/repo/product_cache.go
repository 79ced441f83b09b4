package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/stockmanager/backend/internal/models"
)

const notFoundMarker = "notfound"

// CachedProductRepository wraps a ProductRepository with a redis
// read-through cache. Redis failures are logged and the call falls
// through to the underlying repository, so a cache outage never takes
// product reads down with it.
type CachedProductRepository struct {
	realRepo ProductRepository
	redis    *redis.Client
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo ProductRepository, redis *redis.Client) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		ttl:      5 * time.Minute,
	}
}

func productKey(id int) string { return fmt.Sprintf("product:%d", id) }

func (c *CachedProductRepository) GetByID(id int) (models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := productKey(id)
	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return models.Product{}, ErrProductNotFound
		}
		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			log.Warn().Err(err).Msg("failed to unmarshal cached product, continuing with DB")
			break
		}
		return product, nil

	case errors.Is(err, redis.Nil):

	default:
		log.Warn().Err(err).Msg("redis error, continuing with DB")
	}

	product, err := c.realRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, 1*time.Minute).Err(); setErr != nil {
				log.Warn().Err(setErr).Msg("failed to cache notfound marker")
			}
		}
		return models.Product{}, err
	}

	if jsonData, err := json.Marshal(product); err == nil {
		if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to cache product")
		}
	}
	return product, nil
}

func (c *CachedProductRepository) GetAll() ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.redis.Get(ctx, "products:all").Bytes()
	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("redis error, continuing with DB")
	}

	products, err := c.realRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if jsonData, err := json.Marshal(products); err == nil {
		c.redis.Set(ctx, "products:all", jsonData, c.ttl)
	}
	return products, nil
}

func (c *CachedProductRepository) Create(product models.Product) (models.Product, error) {
	c.invalidateList()
	return c.realRepo.Create(product)
}

func (c *CachedProductRepository) Update(product models.Product) (models.Product, error) {
	c.Invalidate(product.ID)
	return c.realRepo.Update(product)
}

func (c *CachedProductRepository) Delete(id int) error {
	c.Invalidate(id)
	return c.realRepo.Delete(id)
}

// GetByName always hits the database. Name lookups only happen on CSV
// import, which is rare.
func (c *CachedProductRepository) GetByName(name string) (models.Product, error) {
	return c.realRepo.GetByName(name)
}

// LowStock always hits the database. The low-stock set changes with
// every movement, so caching it would mostly serve stale alerts.
func (c *CachedProductRepository) LowStock() ([]models.Product, error) {
	return c.realRepo.LowStock()
}

// Invalidate drops the cached entry for one product plus the list key.
// The ledger calls this after every committed stock change.
func (c *CachedProductRepository) Invalidate(id int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.redis.Del(ctx, productKey(id)).Err(); err != nil {
		log.Warn().Err(err).Int("product_id", id).Msg("failed to invalidate product cache")
	}
	c.invalidateList()
}

func (c *CachedProductRepository) invalidateList() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.redis.Del(ctx, "products:all").Err(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate product list cache")
	}
}
