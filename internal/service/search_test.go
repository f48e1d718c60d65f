package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mindcove/mindex/internal/domain"
)

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorIndex is a mock implementation of VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Search(ctx context.Context, embedding []float32, topK int, filterExpr string) ([]*domain.RawMatch, error) {
	args := m.Called(ctx, embedding, topK, filterExpr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RawMatch), args.Error(1)
}

// MockMetadataRepository is a mock implementation of MetadataRepository
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) FindDocuments(ctx context.Context, ids []string) ([]*domain.DocumentSnapshot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DocumentSnapshot), args.Error(1)
}

func (m *MockMetadataRepository) FindDataSources(ctx context.Context, ids []string) ([]*domain.DataSourceSnapshot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DataSourceSnapshot), args.Error(1)
}

// MockSourceLinkResolver is a mock implementation of SourceLinkResolver
type MockSourceLinkResolver struct {
	mock.Mock
}

func (m *MockSourceLinkResolver) GenerateLink(ctx context.Context, datasourceType string, metadata map[string]any, config map[string]any) (*domain.SourceLink, error) {
	args := m.Called(ctx, datasourceType, metadata, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceLink), args.Error(1)
}

func (m *MockSourceLinkResolver) ExtractMetadata(doc *domain.DocumentSnapshot, datasourceType string) *domain.SourceMetadata {
	args := m.Called(doc, datasourceType)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.SourceMetadata)
}

// MockHistoryRecorder is a mock implementation of HistoryRecorder
type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) Record(entry domain.SearchHistory) {
	m.Called(entry)
}

func newTestService(embedder *MockEmbedder, index *MockVectorIndex, metadata *MockMetadataRepository, links *MockSourceLinkResolver, history HistoryRecorder) *SearchService {
	return NewSearchService(embedder, index, metadata, links, history)
}

func matchFixture(id string, distance float64) *domain.RawMatch {
	return &domain.RawMatch{
		ID:           id,
		Distance:     distance,
		DocumentID:   "doc-" + id,
		DatasourceID: "ds-1",
		Content:      "authentication middleware validates the session token before the request reaches any handler",
		ContentType:  "markdown",
	}
}

// stubEnrichment wires the metadata and link mocks for the happy path where
// every document and datasource resolves.
func stubEnrichment(metadata *MockMetadataRepository, links *MockSourceLinkResolver, matches []*domain.RawMatch) {
	var docs []*domain.DocumentSnapshot
	seen := map[string]struct{}{}
	for _, m := range matches {
		if _, ok := seen[m.DocumentID]; ok {
			continue
		}
		seen[m.DocumentID] = struct{}{}
		docs = append(docs, &domain.DocumentSnapshot{ID: m.DocumentID, Title: "Auth Guide"})
	}
	metadata.On("FindDocuments", mock.Anything, mock.Anything).Return(docs, nil)
	metadata.On("FindDataSources", mock.Anything, mock.Anything).Return([]*domain.DataSourceSnapshot{
		{ID: "ds-1", Name: "Team Wiki", Type: "feishu"},
	}, nil)
	links.On("GenerateLink", mock.Anything, "feishu", mock.Anything, mock.Anything).
		Return(&domain.SourceLink{URL: "https://feishu.cn/docx/x", Type: "feishu"}, nil)
	links.On("ExtractMetadata", mock.Anything, "feishu").
		Return(&domain.SourceMetadata{DatasourceType: "feishu"})
}

func TestSearchService_Search(t *testing.T) {
	ctx := context.Background()
	embedding := []float32{0.1, 0.2, 0.3}

	t.Run("rejects empty query", func(t *testing.T) {
		svc := newTestService(new(MockEmbedder), new(MockVectorIndex), new(MockMetadataRepository), new(MockSourceLinkResolver), nil)

		_, err := svc.Search(ctx, "   ", domain.SearchOptions{}, "")
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})

	t.Run("rejects min score outside range", func(t *testing.T) {
		svc := newTestService(new(MockEmbedder), new(MockVectorIndex), new(MockMetadataRepository), new(MockSourceLinkResolver), nil)

		bad := 1.5
		_, err := svc.Search(ctx, "auth", domain.SearchOptions{MinScore: &bad}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidMinScore)
	})

	t.Run("defaults topK to 10 and passes empty filter", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		matches := []*domain.RawMatch{matchFixture("m1", 0.1)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth middleware").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		resp, err := svc.Search(ctx, "auth middleware", domain.SearchOptions{}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
		index.AssertExpectations(t)
	})

	t.Run("builds filter expression from datasource and content type sets", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		matches := []*domain.RawMatch{matchFixture("m1", 0.1)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		expectedFilter := "datasource_id IN ('ds-1', 'ds-2') AND content_type IN ('code')"
		index.On("Search", mock.Anything, embedding, 5, expectedFilter).Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		_, err := svc.Search(ctx, "auth", domain.SearchOptions{
			TopK:          5,
			DatasourceIDs: []string{"ds-1", "ds-2"},
			ContentTypes:  []string{"code"},
		}, "")
		require.NoError(t, err)
		index.AssertExpectations(t)
	})

	t.Run("wraps embedding failure as upstream search failure", func(t *testing.T) {
		embedder := new(MockEmbedder)
		svc := newTestService(embedder, new(MockVectorIndex), new(MockMetadataRepository), new(MockSourceLinkResolver), nil)

		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(nil, errors.New("api quota exceeded"))

		_, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeUpstreamSearch, domainErr.Code)
	})

	t.Run("wraps vector index failure as upstream search failure", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		svc := newTestService(embedder, index, new(MockMetadataRepository), new(MockSourceLinkResolver), nil)

		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(nil, errors.New("connection refused"))

		_, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeUpstreamSearch, domainErr.Code)
	})

	t.Run("propagates metadata repository failure", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		svc := newTestService(embedder, index, metadata, new(MockSourceLinkResolver), nil)

		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return([]*domain.RawMatch{matchFixture("m1", 0.1)}, nil)
		metadata.On("FindDocuments", mock.Anything, mock.Anything).Return(nil, errors.New("pool closed"))
		metadata.On("FindDataSources", mock.Anything, mock.Anything).Return(nil, errors.New("pool closed"))

		_, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeMetadataUnavailable, domainErr.Code)
	})

	t.Run("keeps index order and sets no weighting fields without role", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		matches := []*domain.RawMatch{
			matchFixture("m1", 0.1),
			matchFixture("m2", 0.2),
			matchFixture("m3", 0.4),
		}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		resp, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.NoError(t, err)
		require.Len(t, resp.Results, 3)
		assert.Nil(t, resp.Role)
		for i, r := range resp.Results {
			assert.Equal(t, matches[i].ID, r.ID)
			assert.Nil(t, r.OriginalScore)
			assert.Nil(t, r.RoleWeight)
		}
	})

	t.Run("records history with the returned result count", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		history := new(MockHistoryRecorder)
		svc := newTestService(embedder, index, metadata, links, history)

		matches := []*domain.RawMatch{matchFixture("m1", 0.1), matchFixture("m2", 0.2)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)
		history.On("Record", mock.MatchedBy(func(entry domain.SearchHistory) bool {
			return entry.UserID == "user-7" && entry.Query == "auth" && entry.ResultsCount == 2
		})).Once()

		resp, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "user-7")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		history.AssertExpectations(t)
	})

	t.Run("skips history for anonymous searches", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		history := new(MockHistoryRecorder)
		svc := newTestService(embedder, index, metadata, links, history)

		matches := []*domain.RawMatch{matchFixture("m1", 0.1)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		_, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.NoError(t, err)
		history.AssertNotCalled(t, "Record", mock.Anything)
	})

	t.Run("drops matches below min score before enrichment", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		// distances 0.1 and 4.0 give similarities ~0.909 and 0.2
		matches := []*domain.RawMatch{matchFixture("m1", 0.1), matchFixture("m2", 4.0)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches[:1])

		minScore := 0.5
		resp, err := svc.Search(ctx, "auth", domain.SearchOptions{MinScore: &minScore}, "")
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "m1", resp.Results[0].ID)
		assert.GreaterOrEqual(t, resp.Results[0].Score, 0.5)
	})

	t.Run("marks the response suspected and attaches a suggestion", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		// distances 8 and 9 give similarities ~0.11, far below the threshold
		matches := []*domain.RawMatch{matchFixture("m1", 8.0), matchFixture("m2", 9.0)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		resp, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.True(t, resp.Suspected)
		assert.NotEmpty(t, resp.Suggestion)
		for _, r := range resp.Results {
			assert.True(t, r.IsSuspected)
		}
	})

	t.Run("leaves the suggestion empty when every result is confident", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		matches := []*domain.RawMatch{matchFixture("m1", 0.1), matchFixture("m2", 0.15)}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(matches, nil)
		stubEnrichment(metadata, links, matches)

		resp, err := svc.Search(ctx, "auth", domain.SearchOptions{}, "")
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.False(t, resp.Suspected)
		assert.Empty(t, resp.Suggestion)
		for _, r := range resp.Results {
			assert.False(t, r.IsSuspected)
		}
	})

	t.Run("identical inputs return identical rankings", func(t *testing.T) {
		embedder := new(MockEmbedder)
		index := new(MockVectorIndex)
		metadata := new(MockMetadataRepository)
		links := new(MockSourceLinkResolver)
		svc := newTestService(embedder, index, metadata, links, nil)

		build := func() []*domain.RawMatch {
			return []*domain.RawMatch{
				matchFixture("m1", 0.1),
				matchFixture("m2", 0.3),
				matchFixture("m3", 0.5),
			}
		}
		embedder.On("GenerateEmbedding", mock.Anything, "auth").Return(embedding, nil)
		index.On("Search", mock.Anything, embedding, 10, "").Return(build(), nil)
		stubEnrichment(metadata, links, build())

		opts := domain.SearchOptions{Role: domain.RoleDeveloper}
		first, err := svc.Search(ctx, "auth", opts, "")
		require.NoError(t, err)
		second, err := svc.Search(ctx, "auth", opts, "")
		require.NoError(t, err)

		require.Equal(t, len(first.Results), len(second.Results))
		for i := range first.Results {
			assert.Equal(t, first.Results[i].ID, second.Results[i].ID)
			assert.Equal(t, first.Results[i].Confidence, second.Results[i].Confidence)
		}
	})
}

func TestBuildFilterExpr(t *testing.T) {
	t.Run("empty options produce empty expression", func(t *testing.T) {
		assert.Equal(t, "", buildFilterExpr(domain.SearchOptions{}))
	})

	t.Run("escapes single quotes in values", func(t *testing.T) {
		expr := buildFilterExpr(domain.SearchOptions{DatasourceIDs: []string{"o'brien"}})
		assert.Equal(t, "datasource_id IN ('o''brien')", expr)
	})

	t.Run("joins both filters with AND", func(t *testing.T) {
		expr := buildFilterExpr(domain.SearchOptions{
			DatasourceIDs: []string{"a"},
			ContentTypes:  []string{"code", "markdown"},
		})
		assert.Equal(t, "datasource_id IN ('a') AND content_type IN ('code', 'markdown')", expr)
	})
}
