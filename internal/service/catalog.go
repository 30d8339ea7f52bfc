package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"whatsapp-boost/internal/model"
)

const servicesKey = "services"

// ErrServiceNotFound is returned when no catalog entry has the requested ID
var ErrServiceNotFound = errors.New("service not found")

// ServiceLister fetches the service catalog from the backend
type ServiceLister interface {
	Services(ctx context.Context, token string) ([]model.Service, error)
}

// CatalogService caches the boosting service catalog
type CatalogService struct {
	backend ServiceLister
	cache   *cache.Cache
}

// NewCatalogService creates a catalog cache with the given TTL
func NewCatalogService(backend ServiceLister, ttl time.Duration) *CatalogService {
	return &CatalogService{
		backend: backend,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Services returns the active services, optionally filtered by platform
func (c *CatalogService) Services(ctx context.Context, token, platform string) ([]model.Service, error) {
	all, err := c.all(ctx, token)
	if err != nil {
		return nil, err
	}

	var out []model.Service
	for _, svc := range all {
		if !svc.Active {
			continue
		}
		if platform != "" && !strings.EqualFold(svc.Platform, platform) {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

// Find returns the service with the given ID
func (c *CatalogService) Find(ctx context.Context, token, id string) (*model.Service, error) {
	all, err := c.all(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrServiceNotFound
}

// Invalidate drops the cached catalog
func (c *CatalogService) Invalidate() {
	c.cache.Delete(servicesKey)
}

func (c *CatalogService) all(ctx context.Context, token string) ([]model.Service, error) {
	if cached, ok := c.cache.Get(servicesKey); ok {
		return cached.([]model.Service), nil
	}

	services, err := c.backend.Services(ctx, token)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(servicesKey, services)
	return services, nil
}
