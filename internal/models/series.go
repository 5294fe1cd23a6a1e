package models

const (
	FirstYear = 1990
	LastYear  = 2025
)

type TimeSeriesRow struct {
	Year                 int     `json:"year"`
	TemperatureDeviation float64 `json:"temperature_deviation"`
	BiodiversityIndex    float64 `json:"biodiversity_index"`
}

// Series is ordered by ascending year with one row per year.
type Series []TimeSeriesRow

func (s Series) Years() []int {
	years := make([]int, len(s))
	for i, r := range s {
		years[i] = r.Year
	}
	return years
}

func (s Series) Temperatures() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.TemperatureDeviation
	}
	return out
}

func (s Series) Biodiversity() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.BiodiversityIndex
	}
	return out
}
