package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/chart"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/session"
)

// renderChart draws one of the dashboard charts. The time-series charts use
// the filtered rows; the correlation chart always uses the full series.
func renderChart(name string, sess *models.Session, view *models.View) (string, bool) {
	switch name {
	case "temperature":
		points := chart.YearPoints(view.Rows, func(r models.TimeSeriesRow) float64 { return r.TemperatureDeviation })
		return chart.Line(points, chart.Options{
			Title:  "Temperature deviation by year",
			XLabel: "year",
			YLabel: "deviation (°C)",
			Stroke: "#d62728",
		}), true
	case "biodiversity":
		points := chart.YearPoints(view.Rows, func(r models.TimeSeriesRow) float64 { return r.BiodiversityIndex })
		return chart.Area(points, chart.Options{
			Title:  "Biodiversity index by year",
			XLabel: "year",
			YLabel: "index",
			Stroke: "#2ca02c",
		}), true
	case "correlation":
		return chart.Scatter(chart.CorrelationPoints(sess.Series), view.Regression, chart.Options{
			Title:  "Temperature vs biodiversity",
			XLabel: "temperature deviation (°C)",
			YLabel: "biodiversity index",
			Stroke: "#ff7f0e",
			Fill:   "#1f77b4",
		}), true
	default:
		return "", false
	}
}

func (h *Handler) getChart(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("chart"), ".svg")

	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	svg, ok := renderChart(name, sess, session.BuildView(sess))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown chart: " + name})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}
