package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/impact"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/stats"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

var ErrInvalidControls = errors.New("invalid controls")

// BuildView filters the session's series to its year range, classifies its
// target and fits the regression over the full, unfiltered series.
func BuildView(sess *models.Session) *models.View {
	v := &models.View{
		SessionID: sess.ID,
		Controls:  sess.Controls,
		Rows:      synth.FilterByYearRange(sess.Series, sess.Controls.From, sess.Controls.To),
		Impact:    impact.Assess(sess.Controls.Target),
	}
	if fit, err := stats.Fit(sess.Series); err == nil {
		v.Regression = &fit
	}
	return v
}

// NormalizeControls clips the years into the generated range. An inverted
// range is kept as is and yields an empty view.
func NormalizeControls(c models.Controls, params synth.Params) (models.Controls, error) {
	if math.IsNaN(c.Target) || math.IsInf(c.Target, 0) {
		return models.Controls{}, fmt.Errorf("%w: target must be a finite number", ErrInvalidControls)
	}
	c.From = clamp(c.From, params.StartYear, params.EndYear)
	c.To = clamp(c.To, params.StartYear, params.EndYear)
	return c, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
