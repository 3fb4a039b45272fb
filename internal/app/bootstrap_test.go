package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate/entities/models"

	"helpcenter/backend/internal/app"
)

type flakySchemaClient struct {
	failures int
	calls    int
}

func (c *flakySchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	c.calls++
	if c.calls <= c.failures {
		return false, errors.New("connection refused")
	}
	return true, nil
}

func (c *flakySchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	return nil
}

func (c *flakySchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return &models.Class{Class: className, Properties: []*models.Property{
		{Name: "chunkId"}, {Name: "articleId"}, {Name: "text"}, {Name: "title"},
		{Name: "url"}, {Name: "category"}, {Name: "chunkIndex"}, {Name: "totalChunks"},
	}}, nil
}

func (c *flakySchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	return nil
}

func TestEnsureSchemaWithRetry_RecoversAfterFailures(t *testing.T) {
	client := &flakySchemaClient{failures: 2}

	err := app.EnsureSchemaWithRetry(context.Background(), client, 5, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 3, client.calls)
}

func TestEnsureSchemaWithRetry_ExhaustsAttempts(t *testing.T) {
	client := &flakySchemaClient{failures: 100}

	err := app.EnsureSchemaWithRetry(context.Background(), client, 3, time.Millisecond)

	assert.Error(t, err)
	assert.Equal(t, 3, client.calls)
}

func TestEnsureSchemaWithRetry_StopsOnCancel(t *testing.T) {
	client := &flakySchemaClient{failures: 100}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.EnsureSchemaWithRetry(ctx, client, 10, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.calls)
}
