package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbeddingAPI is a mock implementation of EmbeddingAPI
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func newClientWithMock(api EmbeddingAPI, dimensions int) *Client {
	return &Client{api: api, dimensions: dimensions}
}

func TestGenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the embedding from the API", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newClientWithMock(api, 3)

		api.On("CreateEmbeddings", mock.Anything, "hello").Return([]float32{0.1, 0.2, 0.3}, nil)

		embedding, err := client.GenerateEmbedding(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		client := newClientWithMock(new(MockEmbeddingAPI), 3)

		_, err := client.GenerateEmbedding(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newClientWithMock(api, 3)

		api.On("CreateEmbeddings", mock.Anything, "hello").Return(nil, errors.New("rate limited"))

		_, err := client.GenerateEmbedding(ctx, "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("rejects wrong dimensions", func(t *testing.T) {
		api := new(MockEmbeddingAPI)
		client := newClientWithMock(api, 1536)

		api.On("CreateEmbeddings", mock.Anything, "hello").Return([]float32{0.1, 0.2}, nil)

		_, err := client.GenerateEmbedding(ctx, "hello")
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "sk-test"})
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}
