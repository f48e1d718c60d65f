package service

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mindcove/mindex/internal/domain"
)

// Heuristic coefficients for the confidence model. These values were tuned
// empirically against production search traffic; change them only with
// offline evaluation, never inline.
const (
	similarityWeight     = 0.6
	resultCountWeight    = 0.2
	contentQualityWeight = 0.2

	// secondaryDiscount reduces confidence for results below the top hit in
	// proportion to their score ratio.
	secondaryDiscount = 0.9

	// DefaultConfidenceThreshold marks results below it as suspected.
	DefaultConfidenceThreshold = 0.7

	// Content shorter than shortContentRunes, or ending in an ellipsis, is
	// treated as probably truncated.
	shortContentRunes     = 50
	fullContentRunes      = 100
	truncatedCompleteness = 0.7
)

// estimateConfidence assigns a confidence in [0,1] to every result and flags
// those below the threshold as suspected. Results must already be sorted
// descending by score; an empty slice passes through unchanged.
func estimateConfidence(results []*domain.SearchResult, threshold float64) {
	if len(results) == 0 {
		return
	}

	topScore := results[0].Score
	overall := similarityWeight*math.Min(topScore, 1.0) +
		resultCountWeight*resultCountFactor(len(results)) +
		contentQualityWeight*contentQualityFactor(results)

	for i, r := range results {
		confidence := overall
		if i > 0 {
			ratio := 0.0
			if topScore > 0 {
				ratio = r.Score / topScore
			}
			confidence = overall * ratio * secondaryDiscount
		}
		r.Confidence = clamp01(confidence)
		r.IsSuspected = r.Confidence < threshold
	}
}

func resultCountFactor(n int) float64 {
	switch {
	case n >= 3:
		return 1.0
	case n == 2:
		return 0.8
	case n == 1:
		return 0.6
	default:
		return 0.0
	}
}

// contentQualityFactor is the mean per-result quality, where each result's
// quality averages a length factor and a completeness factor.
func contentQualityFactor(results []*domain.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var total float64
	for _, r := range results {
		total = total + (lengthFactor(r.Content)+completenessFactor(r.Content))/2
	}
	return total / float64(len(results))
}

func lengthFactor(content string) float64 {
	return math.Min(float64(utf8.RuneCountInString(content))/fullContentRunes, 1.0)
}

func completenessFactor(content string) float64 {
	if strings.HasSuffix(content, "…") || strings.HasSuffix(content, "...") {
		return truncatedCompleteness
	}
	if utf8.RuneCountInString(content) < shortContentRunes {
		return truncatedCompleteness
	}
	return 1.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
