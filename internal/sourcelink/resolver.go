// Package sourcelink builds deep links and provenance metadata for search
// results based on the datasource the underlying document came from.
package sourcelink

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mindcove/mindex/internal/domain"
)

// StorageClient generates presigned download URLs for uploaded documents.
type StorageClient interface {
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// Resolver maps a (datasource type, metadata, datasource config) triple onto
// a clickable source link. Unknown datasource types yield no link rather
// than an error.
type Resolver struct {
	storage StorageClient
}

// NewResolver creates a Resolver. storage may be nil, in which case links
// for uploaded documents are unavailable.
func NewResolver(storage StorageClient) *Resolver {
	return &Resolver{storage: storage}
}

// GenerateLink builds a SourceLink for the given datasource type. metadata is
// the merged chunk/document metadata; config is the datasource's own config.
// A nil link with a nil error means the type is unknown or the metadata is
// insufficient to build a link.
func (r *Resolver) GenerateLink(ctx context.Context, datasourceType string, metadata map[string]any, config map[string]any) (*domain.SourceLink, error) {
	switch datasourceType {
	case "feishu":
		return r.feishuLink(metadata)
	case "gitlab":
		return r.gitlabLink(metadata, config)
	case "database":
		return r.databaseLink(metadata)
	case "upload":
		return r.uploadLink(ctx, metadata)
	default:
		return nil, nil
	}
}

// ExtractMetadata pulls provenance fields off a document snapshot.
func (r *Resolver) ExtractMetadata(doc *domain.DocumentSnapshot, datasourceType string) *domain.SourceMetadata {
	if doc == nil {
		return nil
	}
	return &domain.SourceMetadata{
		Author:         doc.Author,
		SyncedAt:       doc.SyncedAt,
		DatasourceType: datasourceType,
	}
}

func (r *Resolver) feishuLink(metadata map[string]any) (*domain.SourceLink, error) {
	docToken := stringValue(metadata, "external_id")
	if docToken == "" {
		docToken = stringValue(metadata, "doc_token")
	}
	if docToken == "" {
		return nil, nil
	}
	return &domain.SourceLink{
		URL:   fmt.Sprintf("https://feishu.cn/docx/%s", url.PathEscape(docToken)),
		Type:  "feishu",
		Label: linkLabel(metadata, "View in Feishu"),
	}, nil
}

func (r *Resolver) gitlabLink(metadata map[string]any, config map[string]any) (*domain.SourceLink, error) {
	baseURL := strings.TrimSuffix(stringValue(config, "base_url"), "/")
	project := stringValue(config, "project_path")
	filePath := stringValue(metadata, "file_path")
	if filePath == "" {
		filePath = stringValue(metadata, "external_id")
	}
	if baseURL == "" || project == "" || filePath == "" {
		return nil, nil
	}

	ref := stringValue(config, "ref")
	if ref == "" {
		ref = "main"
	}

	link := fmt.Sprintf("%s/%s/-/blob/%s/%s", baseURL, project, url.PathEscape(ref), filePath)
	if line := stringValue(metadata, "start_line"); line != "" {
		link += "#L" + line
	}

	return &domain.SourceLink{
		URL:   link,
		Type:  "gitlab",
		Label: linkLabel(metadata, "View in GitLab"),
	}, nil
}

func (r *Resolver) databaseLink(metadata map[string]any) (*domain.SourceLink, error) {
	table := stringValue(metadata, "table_name")
	if table == "" {
		table = stringValue(metadata, "title")
	}
	if table == "" {
		return nil, nil
	}
	schema := stringValue(metadata, "schema_name")
	if schema == "" {
		schema = "public"
	}
	return &domain.SourceLink{
		URL:   fmt.Sprintf("schema://%s/%s", schema, table),
		Type:  "database",
		Label: fmt.Sprintf("Table %s.%s", schema, table),
	}, nil
}

func (r *Resolver) uploadLink(ctx context.Context, metadata map[string]any) (*domain.SourceLink, error) {
	if r.storage == nil {
		return nil, nil
	}
	key := stringValue(metadata, "storage_key")
	if key == "" {
		key = stringValue(metadata, "external_id")
	}
	if key == "" {
		return nil, nil
	}

	downloadURL, err := r.storage.GenerateDownloadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign download for %s: %w", key, err)
	}

	return &domain.SourceLink{
		URL:   downloadURL,
		Type:  "upload",
		Label: linkLabel(metadata, "Download document"),
	}, nil
}

func linkLabel(metadata map[string]any, fallback string) string {
	if title := stringValue(metadata, "title"); title != "" {
		return title
	}
	return fallback
}

func stringValue(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
