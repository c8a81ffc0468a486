package services

import "github.com/sharda-hr/performance-service/internal/models"

// Score reduces a response set to a percentage in [0,100].
//
// It sums scores against the per-response snapshot max points, never the live
// template, so a record scores identically no matter how its template was
// edited or deleted afterwards. All points are fungible across categories and
// answer types. A zero-point response set scores 0 rather than erroring.
func Score(responses []models.KPIResponse) float64 {
	var total, max float64
	for _, r := range responses {
		total += r.Score
		max += r.MaxPoints
	}

	if max <= 0 {
		return 0
	}

	return total / max * 100
}
