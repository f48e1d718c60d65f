package domain

import (
	"strings"
	"time"
)

// Role identifies the requesting user's role, used for result re-ranking.
type Role string

const (
	RoleDeveloper      Role = "developer"
	RoleProductManager Role = "product_manager"
	RoleTester         Role = "tester"
	RoleArchitect      Role = "architect"
)

// ParseRole returns the matching Role, or empty for unknown values.
// An unknown role is treated the same as no role: no re-ranking applies.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleDeveloper, RoleProductManager, RoleTester, RoleArchitect:
		return Role(value)
	}
	return ""
}

// ContentClass is the normalized bucket a chunk's content type falls into.
// Raw content types arrive as free-form strings from connector metadata; all
// weighting decisions go through this classification.
type ContentClass string

const (
	ContentClassCode           ContentClass = "code"
	ContentClassMarkdown       ContentClass = "markdown"
	ContentClassDatabaseSchema ContentClass = "database_schema"
	ContentClassDocument       ContentClass = "document"
)

// ClassifyContentType maps a raw content-type string to its ContentClass.
// Anything unrecognized lands in the document bucket.
func ClassifyContentType(raw string) ContentClass {
	switch {
	case raw == "code":
		return ContentClassCode
	case strings.HasPrefix(raw, "markdown"):
		return ContentClassMarkdown
	case raw == "database_schema" || strings.Contains(raw, "schema"):
		return ContentClassDatabaseSchema
	default:
		return ContentClassDocument
	}
}

// RawMatch is a single nearest-neighbor hit returned by the vector index,
// ordered by ascending distance. It exists only for the duration of a request.
type RawMatch struct {
	ID           string
	Distance     float64
	DocumentID   string
	DatasourceID string
	ChunkIndex   int
	Content      string
	ContentType  string
	Metadata     map[string]any
}

// DocumentSnapshot is a denormalized, read-only view of a document record.
type DocumentSnapshot struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ExternalID string     `json:"external_id,omitempty"`
	Author     string     `json:"author,omitempty"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
}

// DataSourceSnapshot is a denormalized, read-only view of a datasource record.
type DataSourceSnapshot struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// SourceLink is a reconstructed deep link back to the originating system.
type SourceLink struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// SourceMetadata carries provenance information for a result.
type SourceMetadata struct {
	Author         string     `json:"author,omitempty"`
	SyncedAt       *time.Time `json:"synced_at,omitempty"`
	DatasourceType string     `json:"datasource_type"`
}

// SearchResult is a RawMatch enriched with metadata, scoring, and confidence.
// Assembled fresh per request; never persisted.
//
// Score starts as the normalized similarity and is overwritten by the weighted
// score when a role applies; OriginalScore and RoleWeight are set only in that
// case, with Score == OriginalScore * RoleWeight.
type SearchResult struct {
	ID                 string              `json:"id"`
	Score              float64             `json:"score"`
	OriginalScore      *float64            `json:"original_score,omitempty"`
	RoleWeight         *float64            `json:"role_weight,omitempty"`
	DocumentID         string              `json:"document_id"`
	DatasourceID       string              `json:"datasource_id"`
	ChunkIndex         int                 `json:"chunk_index"`
	Content            string              `json:"content"`
	HighlightedContent string              `json:"highlighted_content,omitempty"`
	ContentType        string              `json:"content_type"`
	Confidence         float64             `json:"confidence"`
	IsSuspected        bool                `json:"is_suspected"`
	SourceLink         *SourceLink         `json:"source_link"`
	SourceMetadata     *SourceMetadata     `json:"source_metadata,omitempty"`
	Document           *DocumentSnapshot   `json:"document,omitempty"`
	Datasource         *DataSourceSnapshot `json:"datasource,omitempty"`
	Metadata           map[string]any      `json:"-"`
}

// DefaultTopK is the number of results retrieved when SearchOptions.TopK is unset.
const DefaultTopK = 10

// SearchOptions controls a single search invocation.
type SearchOptions struct {
	TopK          int
	MinScore      *float64
	DatasourceIDs []string
	ContentTypes  []string
	Role          Role
}

// SearchResponse is the assembled outcome of one search.
type SearchResponse struct {
	Query      string          `json:"query"`
	Role       *Role           `json:"role"`
	Total      int             `json:"total"`
	Suspected  bool            `json:"suspected"`
	Results    []*SearchResult `json:"results"`
	Suggestion string          `json:"suggestion,omitempty"`
}
