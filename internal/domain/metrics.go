package domain

// ClientIncidentCount is one row of the top-clients ranking.
type ClientIncidentCount struct {
	ClientID      int64  `db:"client_id" json:"client_id"`
	Client        string `db:"client" json:"client"`
	IncidentCount int    `db:"incident_count" json:"incident_count"`
}

// ResolutionTime is one row of a resolution-time ranking, keyed by incident
// type or by employee. AvgDays is the mean of whole-day differences.
type ResolutionTime struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	AvgDays float64 `db:"avg_days" json:"avg_resolution_days"`
	Tickets int     `db:"tickets" json:"tickets"`
}

// ClientMetrics feeds the client report. AvgDays is nil when none of the
// client's tickets has a close date.
type ClientMetrics struct {
	ClientID        int64    `db:"client_id" json:"client_id"`
	Client          string   `db:"client" json:"client"`
	TotalIncidents  int      `db:"total_incidents" json:"total_incidents"`
	AvgDays         *float64 `db:"avg_days" json:"avg_resolution_days"`
	AvgSatisfaction *float64 `db:"avg_satisfaction" json:"avg_satisfaction"`
}
