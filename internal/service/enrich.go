package service

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/mindcove/mindex/internal/domain"
)

// enrichResults joins matches with relational metadata, attaches source links
// and provenance, and produces highlighted content. The two batched lookups
// run concurrently and both must complete before enrichment proceeds.
//
// A missing document or datasource record degrades that field to absent; a
// failed link generation is logged and yields a null link. Only a
// repository-wide failure aborts the request.
func (s *SearchService) enrichResults(ctx context.Context, query string, results []*domain.SearchResult) error {
	if len(results) == 0 {
		return nil
	}

	docIDs, dsIDs := collectMetadataIDs(results)

	var docs []*domain.DocumentSnapshot
	var sources []*domain.DataSourceSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.metadata.FindDocuments(gctx, docIDs)
		return err
	})
	g.Go(func() error {
		var err error
		sources, err = s.metadata.FindDataSources(gctx, dsIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.WrapMetadataUnavailable(err)
	}

	docByID := make(map[string]*domain.DocumentSnapshot, len(docs))
	for _, d := range docs {
		if d != nil {
			docByID[d.ID] = d
		}
	}
	dsByID := make(map[string]*domain.DataSourceSnapshot, len(sources))
	for _, ds := range sources {
		if ds != nil {
			dsByID[ds.ID] = ds
		}
	}

	terms := extractKeywords(query)

	for _, r := range results {
		r.Document = docByID[r.DocumentID]
		r.Datasource = dsByID[r.DatasourceID]
		r.HighlightedContent = highlightKeywords(r.Content, terms)

		// Link and provenance generation both key off the datasource type, so
		// they only resolve when the document and datasource lookups succeed.
		if r.Document == nil || r.Datasource == nil {
			continue
		}

		link, err := s.links.GenerateLink(ctx, r.Datasource.Type, mergeLinkMetadata(r), r.Datasource.Config)
		if err != nil {
			log.Printf("search: link generation failed for document %s (%s): %v", r.DocumentID, r.Datasource.Type, err)
		} else {
			r.SourceLink = link
		}
		r.SourceMetadata = s.links.ExtractMetadata(r.Document, r.Datasource.Type)
	}

	return nil
}

// collectMetadataIDs returns the distinct document and datasource ids
// referenced by the result set, preserving first-seen order.
func collectMetadataIDs(results []*domain.SearchResult) (docIDs, dsIDs []string) {
	seenDocs := make(map[string]struct{}, len(results))
	seenSources := make(map[string]struct{}, len(results))
	for _, r := range results {
		if r.DocumentID != "" {
			if _, ok := seenDocs[r.DocumentID]; !ok {
				seenDocs[r.DocumentID] = struct{}{}
				docIDs = append(docIDs, r.DocumentID)
			}
		}
		if r.DatasourceID != "" {
			if _, ok := seenSources[r.DatasourceID]; !ok {
				seenSources[r.DatasourceID] = struct{}{}
				dsIDs = append(dsIDs, r.DatasourceID)
			}
		}
	}
	return docIDs, dsIDs
}

// mergeLinkMetadata combines the chunk's opaque metadata with document fields
// the resolver needs. Chunk metadata wins on key collisions; most connectors
// store the richer location data (file paths, line numbers) there.
func mergeLinkMetadata(r *domain.SearchResult) map[string]any {
	merged := map[string]any{
		"document_id": r.DocumentID,
		"title":       r.Document.Title,
		"external_id": r.Document.ExternalID,
		"chunk_index": r.ChunkIndex,
	}
	for k, v := range r.Metadata {
		merged[k] = v
	}
	return merged
}
