package synth

import "github.com/mr1hm/go-biodiversity-dashboard/internal/models"

// FilterByYearRange returns the rows with low <= year <= high in their
// original order. An inverted range yields an empty series.
func FilterByYearRange(series models.Series, low, high int) models.Series {
	out := make(models.Series, 0, len(series))
	if low > high {
		return out
	}
	for _, r := range series {
		if r.Year >= low && r.Year <= high {
			out = append(out, r)
		}
	}
	return out
}
