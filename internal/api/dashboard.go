package api

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/impact"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/session"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"eqf": func(a, b float64) bool { return a == b },
}).Parse(dashboardHTML))

type dashboardData struct {
	View    *models.View
	Years   []int
	Targets []float64
	Target  float64
}

// currentView resolves the caller's session, creating one when the cookie is
// missing or stale.
func (h *Handler) currentView(c *gin.Context) (*models.View, error) {
	ctx := c.Request.Context()

	id, err := c.Cookie(sessionCookie)
	if err == nil {
		view, err := h.sessions.View(ctx, id)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	view, err := h.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, view.SessionID, 0, "/", "", false, true)
	return view, nil
}

// dashboard renders the page for the caller's session. It never changes the
// session's controls.
func (h *Handler) dashboard(c *gin.Context) {
	view, err := h.currentView(c)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	params := h.sessions.Params()
	years := make([]int, 0, params.Points())
	for y := params.StartYear; y <= params.EndYear; y++ {
		years = append(years, y)
	}

	c.Render(http.StatusOK, render.HTML{
		Template: dashboardTmpl,
		Name:     "dashboard",
		Data: dashboardData{
			View:    view,
			Years:   years,
			Targets: impact.TargetOptions,
			Target:  impact.TargetOptions[impact.OptionIndex(view.Controls.Target)],
		},
	})
}

// submitDashboard applies the posted form (from, to, target) as a control
// change and redirects back to the page.
func (h *Handler) submitDashboard(c *gin.Context) {
	view, err := h.currentView(c)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	if controls, ok := formControls(c, view.Controls); ok {
		if _, err := h.sessions.UpdateControls(c.Request.Context(), view.SessionID, controls); err != nil {
			h.sessionError(c, err)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// formControls reads the dashboard form. Fields that are absent or do not
// parse keep their current value.
func formControls(c *gin.Context, current models.Controls) (models.Controls, bool) {
	changed := false
	next := current
	if v, err := strconv.Atoi(c.PostForm("from")); err == nil {
		next.From, changed = v, true
	}
	if v, err := strconv.Atoi(c.PostForm("to")); err == nil {
		next.To, changed = v, true
	}
	if v, err := parseFinite(c.PostForm("target")); err == nil {
		next.Target, changed = v, true
	}
	return next, changed
}
