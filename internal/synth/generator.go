package synth

import (
	"math"
	"math/rand/v2"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

// Generator draws synthetic temperature/biodiversity series. It is not safe
// for concurrent use because it owns its random source.
type Generator struct {
	params Params
	rng    *rand.Rand
}

func NewGenerator(params Params, rng *rand.Rand) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{params: params, rng: rng}, nil
}

// NewSeeded returns a source that yields the same draws for the same seed.
func NewSeeded(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// GenerateSeries draws one series over 1990..2025 with the default params.
func GenerateSeries(rng *rand.Rand) models.Series {
	g := &Generator{params: DefaultParams(), rng: rng}
	return g.Generate()
}

func (g *Generator) Params() Params {
	return g.params
}

func (g *Generator) Generate() models.Series {
	p := g.params
	n := p.Points()
	series := make(models.Series, n)

	for i := 0; i < n; i++ {
		var ramp float64
		if n > 1 {
			ramp = p.RampMax * float64(i) / float64(n-1)
		}
		temp := ramp + g.normal(p.TempNoise)
		series[i] = models.TimeSeriesRow{
			Year:                 p.StartYear + i,
			TemperatureDeviation: temp,
			BiodiversityIndex:    p.Baseline - p.Sensitivity*temp + g.normal(p.BiodiversityNoise),
		}
	}

	return series
}

// normal draws from N(0, scale), redrawing the rare non-finite sample.
func (g *Generator) normal(scale float64) float64 {
	if scale == 0 {
		return 0
	}
	for {
		v := g.rng.NormFloat64() * scale
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
}
