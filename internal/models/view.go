package models

import "time"

// Controls are the user-facing dashboard inputs.
type Controls struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Target float64 `json:"target"`
}

func DefaultControls() Controls {
	return Controls{
		From:   FirstYear,
		To:     LastYear,
		Target: 0.5,
	}
}

type Session struct {
	ID        string
	Seed      int64
	Series    Series
	Controls  Controls
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is what the dashboard renders for a session at a point in time.
type View struct {
	SessionID  string      `json:"session_id"`
	Controls   Controls    `json:"controls"`
	Rows       Series      `json:"rows"`
	Impact     Impact      `json:"impact"`
	Regression *Regression `json:"regression,omitempty"`
}
