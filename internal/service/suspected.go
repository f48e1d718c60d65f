package service

import "github.com/mindcove/mindex/internal/domain"

const (
	// maxSuspectedResults caps how many low-confidence results may appear in
	// a response. The rest are dropped outright.
	maxSuspectedResults = 3

	suspectedSuggestion = "Some results have low confidence. Try a more specific query or narrow the datasource filters."
)

// applySuspectedGate partitions results into confident and suspected entries,
// keeping each partition's relative order, truncates the suspected partition
// to maxSuspectedResults, and appends it after the confident ones. The
// returned flag reports whether any suspected result survived truncation.
func applySuspectedGate(results []*domain.SearchResult) ([]*domain.SearchResult, bool) {
	normal := make([]*domain.SearchResult, 0, len(results))
	var suspected []*domain.SearchResult
	for _, r := range results {
		if r.IsSuspected {
			suspected = append(suspected, r)
		} else {
			normal = append(normal, r)
		}
	}

	if len(suspected) > maxSuspectedResults {
		suspected = suspected[:maxSuspectedResults]
	}

	out := append(normal, suspected...)
	return out, len(suspected) > 0
}
