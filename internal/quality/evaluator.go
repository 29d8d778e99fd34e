// Package quality scores parsed records against their document schema.
package quality

import (
	"strings"

	"walksocr/internal/domain"
	"walksocr/internal/schema"
)

// Evaluate computes fresh QualityMetrics for a record. Pure and
// deterministic: no I/O, no hidden state.
//
// A field counts as found iff its value is non-null, non-empty after
// trimming, and not a reserved sentinel. A schema with zero essential fields
// is trivially accepted with score 100.
func Evaluate(rec domain.ParsedRecord, s schema.DocumentSchema) domain.QualityMetrics {
	total := len(s.EssentialFields)
	if total == 0 {
		return domain.QualityMetrics{
			Score:         100,
			TotalRequired: 0,
			FoundFields:   []string{},
			MissingFields: []string{},
			Accepted:      true,
		}
	}

	found := make([]string, 0, total)
	missing := make([]string, 0, total)
	for _, field := range s.EssentialFields {
		if fieldFound(rec, field) {
			found = append(found, field)
		} else {
			missing = append(missing, field)
		}
	}

	return domain.QualityMetrics{
		Score:         100 * float64(len(found)) / float64(total),
		ValidFields:   len(found),
		TotalRequired: total,
		FoundFields:   found,
		MissingFields: missing,
		Accepted:      len(found) >= s.MinRequired,
	}
}

func fieldFound(rec domain.ParsedRecord, field string) bool {
	v, ok := rec[field]
	if !ok || v == nil {
		return false
	}
	trimmed := strings.TrimSpace(*v)
	switch trimmed {
	case "", "null", domain.SentinelIllegible, domain.SentinelNeedsReview:
		return false
	}
	return true
}
