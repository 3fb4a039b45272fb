package vector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/weaviate/weaviate/entities/models"

	"helpcenter/backend/internal/vector"
)

type MockSchemaClient struct {
	mock.Mock
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	args := m.Called(ctx, className)
	return args.Bool(0), args.Error(1)
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	args := m.Called(ctx, className)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	args := m.Called(ctx, className, property)
	return args.Error(0)
}

func TestEnsureSchema_CreatesClassWhenMissing(t *testing.T) {
	ctx := context.Background()
	client := new(MockSchemaClient)

	client.On("ClassExists", ctx, vector.ClassName).Return(false, nil).Once()
	client.On("CreateClass", ctx, mock.MatchedBy(func(c *models.Class) bool {
		cfg, _ := c.VectorIndexConfig.(map[string]interface{})
		return c.Class == vector.ClassName &&
			c.Vectorizer == "none" &&
			cfg["distance"] == "cosine" &&
			len(c.Properties) == 8
	})).Return(nil).Once()

	err := vector.EnsureSchema(ctx, client)

	assert.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "GetClass", mock.Anything, mock.Anything)
}

func TestEnsureSchema_AddsMissingProperties(t *testing.T) {
	ctx := context.Background()
	client := new(MockSchemaClient)

	existing := &models.Class{
		Class: vector.ClassName,
		Properties: []*models.Property{
			{Name: "chunkId"},
			{Name: "articleId"},
			{Name: "text"},
			{Name: "title"},
			{Name: "url"},
			{Name: "category"},
			{Name: "chunkIndex"},
		},
	}

	client.On("ClassExists", ctx, vector.ClassName).Return(true, nil).Once()
	client.On("GetClass", ctx, vector.ClassName).Return(existing, nil).Once()
	client.On("AddProperty", ctx, vector.ClassName, mock.MatchedBy(func(p *models.Property) bool {
		return p.Name == "totalChunks"
	})).Return(nil).Once()

	err := vector.EnsureSchema(ctx, client)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestEnsureSchema_NoopWhenComplete(t *testing.T) {
	ctx := context.Background()
	client := new(MockSchemaClient)

	existing := &models.Class{
		Class: vector.ClassName,
		Properties: []*models.Property{
			{Name: "chunkId"}, {Name: "articleId"}, {Name: "text"}, {Name: "title"},
			{Name: "url"}, {Name: "category"}, {Name: "chunkIndex"}, {Name: "totalChunks"},
		},
	}

	client.On("ClassExists", ctx, vector.ClassName).Return(true, nil).Once()
	client.On("GetClass", ctx, vector.ClassName).Return(existing, nil).Once()

	err := vector.EnsureSchema(ctx, client)

	assert.NoError(t, err)
	client.AssertNotCalled(t, "AddProperty", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureSchema_PropagatesExistenceError(t *testing.T) {
	ctx := context.Background()
	client := new(MockSchemaClient)

	client.On("ClassExists", ctx, vector.ClassName).Return(false, errors.New("connection refused")).Once()

	err := vector.EnsureSchema(ctx, client)

	assert.Error(t, err)
	client.AssertNotCalled(t, "CreateClass", mock.Anything, mock.Anything)
}
