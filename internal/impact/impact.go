package impact

import (
	"math"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
)

const (
	CautionThreshold = 1.5
	SevereThreshold  = 2.0
)

// TargetOptions are the temperature-rise targets offered by the dashboard slider.
var TargetOptions = []float64{0.5, 1.0, 1.5, 2.0, 3.0, 5.0}

var messages = map[models.SeverityTier]string{
	models.SeveritySevere:  "Up to 99% of coral reefs are at risk of being lost, and many mammals lose more than half of their habitat.",
	models.SeverityCaution: "Ecosystem resilience weakens sharply and the rate of extinction accelerates.",
	models.SeveritySafe:    "Ecosystems keep a minimal margin to adapt to the change.",
}

// Classify maps any temperature-rise target to a tier. Thresholds are
// inclusive lower bounds; NaN falls through to SAFE.
func Classify(target float64) models.SeverityTier {
	if target >= SevereThreshold {
		return models.SeveritySevere
	}
	if target >= CautionThreshold {
		return models.SeverityCaution
	}
	return models.SeveritySafe
}

func Message(tier models.SeverityTier) string {
	return messages[tier]
}

func Assess(target float64) models.Impact {
	tier := Classify(target)
	return models.Impact{
		Target:  target,
		Tier:    tier,
		Message: Message(tier),
	}
}

// OptionIndex returns the index of the option closest to v.
func OptionIndex(v float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, opt := range TargetOptions {
		if d := math.Abs(opt - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
