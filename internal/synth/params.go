package synth

import (
	"errors"
	"fmt"
	"math"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

var ErrInvalidParams = errors.New("invalid synthesis params")

// Params describes the shape of the synthetic series. The zero value is not
// usable; start from DefaultParams.
type Params struct {
	StartYear         int     `yaml:"start_year"`
	EndYear           int     `yaml:"end_year"`
	RampMax           float64 `yaml:"ramp_max"`
	TempNoise         float64 `yaml:"temp_noise"`
	Baseline          float64 `yaml:"baseline"`
	Sensitivity       float64 `yaml:"sensitivity"`
	BiodiversityNoise float64 `yaml:"biodiversity_noise"`
}

func DefaultParams() Params {
	return Params{
		StartYear:         models.FirstYear,
		EndYear:           models.LastYear,
		RampMax:           1.5,
		TempNoise:         0.1,
		Baseline:          100,
		Sensitivity:       20,
		BiodiversityNoise: 2.0,
	}
}

// Points is the number of rows a series generated with p has.
func (p Params) Points() int {
	return p.EndYear - p.StartYear + 1
}

func (p Params) Validate() error {
	if p.StartYear > p.EndYear {
		return fmt.Errorf("%w: start year %d after end year %d", ErrInvalidParams, p.StartYear, p.EndYear)
	}
	if p.TempNoise < 0 || p.BiodiversityNoise < 0 {
		return fmt.Errorf("%w: noise scales must be non-negative", ErrInvalidParams)
	}
	for name, v := range map[string]float64{
		"ramp_max":           p.RampMax,
		"temp_noise":         p.TempNoise,
		"baseline":           p.Baseline,
		"sensitivity":        p.Sensitivity,
		"biodiversity_noise": p.BiodiversityNoise,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}
	return nil
}
