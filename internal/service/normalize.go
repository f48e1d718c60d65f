package service

import "github.com/mindcove/mindex/internal/domain"

// similarityFromDistance maps a vector distance (smaller = closer) onto a
// bounded similarity in (0,1]. A distance of zero is an exact match.
func similarityFromDistance(distance float64) float64 {
	return 1 / (1 + distance)
}

// normalizeMatches re-expresses raw matches as results scored by similarity,
// dropping any match strictly below minScore. The index returns ascending
// distance, so the output is already ordered by descending similarity.
func normalizeMatches(matches []*domain.RawMatch, minScore *float64) []*domain.SearchResult {
	results := make([]*domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		similarity := similarityFromDistance(m.Distance)
		if minScore != nil && similarity < *minScore {
			continue
		}
		results = append(results, &domain.SearchResult{
			ID:           m.ID,
			Score:        similarity,
			DocumentID:   m.DocumentID,
			DatasourceID: m.DatasourceID,
			ChunkIndex:   m.ChunkIndex,
			Content:      m.Content,
			ContentType:  m.ContentType,
			Metadata:     m.Metadata,
		})
	}
	return results
}
