package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-boost/internal/model"
)

type countingLister struct {
	calls    int
	services []model.Service
}

func (c *countingLister) Services(ctx context.Context, token string) ([]model.Service, error) {
	c.calls++
	return c.services, nil
}

func TestCatalogFiltersAndCaches(t *testing.T) {
	lister := &countingLister{services: []model.Service{
		{ID: "1", Platform: "TikTok", Name: "Followers", Active: true},
		{ID: "2", Platform: "tiktok", Name: "Vues", Active: false},
		{ID: "3", Platform: "facebook", Name: "Likes", Active: true},
	}}
	catalog := NewCatalogService(lister, time.Minute)

	tiktok, err := catalog.Services(context.Background(), "tok", "tiktok")
	require.NoError(t, err)
	require.Len(t, tiktok, 1)
	assert.Equal(t, "Followers", tiktok[0].Name)

	all, err := catalog.Services(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// inactive services can still be resolved by ID
	svc, err := catalog.Find(context.Background(), "tok", "2")
	require.NoError(t, err)
	assert.False(t, svc.Active)

	_, err = catalog.Find(context.Background(), "tok", "9")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	assert.Equal(t, 1, lister.calls)

	catalog.Invalidate()
	_, err = catalog.Services(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}
