package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

var ErrInsufficientData = errors.New("insufficient data for regression")

// Fit regresses biodiversity index on temperature deviation by ordinary least
// squares.
func Fit(series models.Series) (models.Regression, error) {
	if len(series) < 2 {
		return models.Regression{}, ErrInsufficientData
	}

	x := series.Temperatures()
	y := series.Biodiversity()
	// Correlation is undefined when either variable is constant.
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return models.Regression{}, ErrInsufficientData
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	fit := models.Regression{
		Slope:     slope,
		Intercept: intercept,
		R:         stat.Correlation(x, y, nil),
		RSquared:  stat.RSquared(x, y, nil, intercept, slope),
		N:         len(series),
		MeanX:     stat.Mean(x, nil),
		SXX:       stat.Variance(x, nil) * float64(len(x)-1),
	}
	if df := len(x) - 2; df > 0 {
		var ssr float64
		for i := range x {
			r := y[i] - fit.Predict(x[i])
			ssr += r * r
		}
		fit.ResidualSE = math.Sqrt(ssr / float64(df))
		fit.TCritical = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(0.975)
	}
	if !finite(fit.Slope, fit.Intercept, fit.R, fit.RSquared, fit.ResidualSE, fit.TCritical) {
		return models.Regression{}, ErrInsufficientData
	}
	return fit, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MeanResidual is the mean of y - (baseline - sensitivity*x) over the series.
func MeanResidual(series models.Series, baseline, sensitivity float64) float64 {
	if len(series) == 0 {
		return 0
	}
	residuals := make([]float64, len(series))
	for i, r := range series {
		residuals[i] = r.BiodiversityIndex - (baseline - sensitivity*r.TemperatureDeviation)
	}
	return stat.Mean(residuals, nil)
}
