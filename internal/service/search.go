package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindcove/mindex/internal/domain"
	"github.com/mindcove/mindex/internal/telemetry"
)

// Embedder converts query text into a fixed-length vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the nearest raw matches for a vector, ordered by
// ascending distance. filterExpr is a conjunctive boolean expression over
// set-membership predicates, or empty for no filtering.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, topK int, filterExpr string) ([]*domain.RawMatch, error)
}

// MetadataRepository batch-loads relational metadata referenced by matches.
type MetadataRepository interface {
	FindDocuments(ctx context.Context, ids []string) ([]*domain.DocumentSnapshot, error)
	FindDataSources(ctx context.Context, ids []string) ([]*domain.DataSourceSnapshot, error)
}

// SourceLinkResolver builds deep links and provenance metadata per datasource type.
type SourceLinkResolver interface {
	GenerateLink(ctx context.Context, datasourceType string, metadata map[string]any, config map[string]any) (*domain.SourceLink, error)
	ExtractMetadata(doc *domain.DocumentSnapshot, datasourceType string) *domain.SourceMetadata
}

// HistoryRecorder accepts a search history entry for best-effort persistence.
// Record must not block the caller; failures are handled by the recorder.
type HistoryRecorder interface {
	Record(entry domain.SearchHistory)
}

// SearchConfig holds the engine's tunables, loaded once at startup.
type SearchConfig struct {
	ConfidenceThreshold float64
	RoleWeights         RoleWeightTable
}

// DefaultSearchConfig returns the default engine configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		RoleWeights:         DefaultRoleWeightTable(),
	}
}

// SearchService runs the retrieval pipeline: embed, vector search, score
// normalization, enrichment, role weighting, confidence estimation, and the
// suspected-result gate. It holds no mutable state; the weight table and
// threshold are read-only after construction.
type SearchService struct {
	embedder Embedder
	index    VectorIndex
	metadata MetadataRepository
	links    SourceLinkResolver
	history  HistoryRecorder
	cfg      SearchConfig
}

func NewSearchService(
	embedder Embedder,
	index VectorIndex,
	metadata MetadataRepository,
	links SourceLinkResolver,
	history HistoryRecorder,
) *SearchService {
	return NewSearchServiceWithConfig(embedder, index, metadata, links, history, DefaultSearchConfig())
}

func NewSearchServiceWithConfig(
	embedder Embedder,
	index VectorIndex,
	metadata MetadataRepository,
	links SourceLinkResolver,
	history HistoryRecorder,
	cfg SearchConfig,
) *SearchService {
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold >= 1 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.RoleWeights == nil {
		cfg.RoleWeights = DefaultRoleWeightTable()
	}
	return &SearchService{
		embedder: embedder,
		index:    index,
		metadata: metadata,
		links:    links,
		history:  history,
		cfg:      cfg,
	}
}

// Search executes one retrieval request. userID may be empty; when set, a
// history record is handed to the recorder after the response is assembled.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions, userID string) (*domain.SearchResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		UserID:    userID,
		Role:      string(opts.Role),
		Operation: "search",
	})
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if opts.MinScore != nil && (*opts.MinScore < 0 || *opts.MinScore > 1) {
		return nil, domain.ErrInvalidMinScore
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, domain.WrapUpstreamSearch("embedding generation failed", err)
	}

	matches, err := s.index.Search(ctx, embedding, topK, buildFilterExpr(opts))
	if err != nil {
		span.SetError(err)
		return nil, domain.WrapUpstreamSearch("vector index search failed", err)
	}

	results := normalizeMatches(matches, opts.MinScore)

	if err := s.enrichResults(ctx, query, results); err != nil {
		span.SetError(err)
		return nil, err
	}

	applyRoleWeights(results, opts.Role, s.cfg.RoleWeights)
	estimateConfidence(results, s.cfg.ConfidenceThreshold)
	results, hasSuspected := applySuspectedGate(results)

	resp := &domain.SearchResponse{
		Query:     query,
		Role:      roleOrNil(opts.Role),
		Total:     len(results),
		Suspected: hasSuspected,
		Results:   results,
	}
	if hasSuspected {
		resp.Suggestion = suspectedSuggestion
	}

	if userID != "" && s.history != nil {
		s.history.Record(domain.SearchHistory{
			UserID:       userID,
			Query:        query,
			Role:         opts.Role,
			ResultsCount: resp.Total,
		})
	}

	return resp, nil
}

// buildFilterExpr turns the optional set filters into a conjunctive boolean
// expression for the vector index. Absent filters are omitted entirely.
func buildFilterExpr(opts domain.SearchOptions) string {
	var clauses []string
	if len(opts.DatasourceIDs) > 0 {
		clauses = append(clauses, inClause("datasource_id", opts.DatasourceIDs))
	}
	if len(opts.ContentTypes) > 0 {
		clauses = append(clauses, inClause("content_type", opts.ContentTypes))
	}
	return strings.Join(clauses, " AND ")
}

func inClause(field string, values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+strings.ReplaceAll(v, "'", "''")+"'")
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(quoted, ", "))
}

func roleOrNil(role domain.Role) *domain.Role {
	if role == "" {
		return nil
	}
	return &role
}
