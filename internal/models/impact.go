package models

import "math"

type SeverityTier string

const (
	SeveritySafe    SeverityTier = "SAFE"
	SeverityCaution SeverityTier = "CAUTION"
	SeveritySevere  SeverityTier = "SEVERE"
)

func (t SeverityTier) String() string {
	return string(t)
}

type Impact struct {
	Target  float64      `json:"target"`
	Tier    SeverityTier `json:"tier"`
	Message string       `json:"message"`
}

type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`

	// Inputs for the 95% confidence band of the fitted mean.
	MeanX      float64 `json:"mean_x"`
	SXX        float64 `json:"sxx"`
	ResidualSE float64 `json:"residual_se"`
	TCritical  float64 `json:"t_critical"`
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Band returns the lower and upper 95% confidence limits of the fitted
// mean at x. The band collapses onto the line when there are fewer than
// three points.
func (r Regression) Band(x float64) (float64, float64) {
	y := r.Predict(x)
	if r.N < 3 || r.SXX <= 0 {
		return y, y
	}
	d := x - r.MeanX
	half := r.TCritical * r.ResidualSE * math.Sqrt(1/float64(r.N)+d*d/r.SXX)
	return y - half, y + half
}
