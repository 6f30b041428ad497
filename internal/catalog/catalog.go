// Package catalog serves the terminal's product list from the remote API,
// cached in redis.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedmart-pos/internal/models"
	"feedmart-pos/internal/telemetry"
	"feedmart-pos/internal/upstream"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	PRODUCTS_CACHE_KEY = "pos:products"
	CACHE_TTL_SHORT    = 5 * time.Minute
)

var ErrProductNotFound = errors.New("product not found")

type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// ProductGetter is an optional ProductSource extension for fetching one
// product that is missing from the cached list.
type ProductGetter interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type Service struct {
	source  ProductSource
	redis   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewService wires the catalog. redisClient may be nil, in which case every
// read goes to the source.
func NewService(source ProductSource, redisClient *redis.Client, logger *zap.Logger, metrics *telemetry.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		redis:   redisClient,
		ttl:     CACHE_TTL_SHORT,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, PRODUCTS_CACHE_KEY).Result()
		if err == nil {
			var cached []models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				s.metrics.CatalogCache(true)
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("catalog cache read failed, falling back to api", zap.Error(err))
		}
	}
	s.metrics.CatalogCache(false)

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(products); err == nil {
			if err := s.redis.Set(ctx, PRODUCTS_CACHE_KEY, data, s.ttl).Err(); err != nil {
				s.logger.Warn("catalog cache write failed", zap.String("key", PRODUCTS_CACHE_KEY), zap.Error(err))
			}
		}
	}
	return products, nil
}

// Product resolves one product from the (cached) list, asking the source
// directly when the id is not in it.
func (s *Service) Product(ctx context.Context, id int64) (models.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}

	getter, ok := s.source.(ProductGetter)
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	p, err := getter.GetProduct(ctx, id)
	if errors.Is(err, upstream.ErrNotFound) || (err == nil && p == nil) {
		return models.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return models.Product{}, err
	}

	// the cached list predates this product
	s.logger.Debug("product missing from cached list", zap.Int64("product_id", id))
	s.Invalidate(ctx)
	return *p, nil
}

// Invalidate drops the cached list. Called after a sale changes stock.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, PRODUCTS_CACHE_KEY).Err(); err != nil {
		s.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
