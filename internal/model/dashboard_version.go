package model

// DashboardVersion is one immutable snapshot of a dashboard. Rows are only
// ever created on save and removed by retention pruning or dashboard deletion.
type DashboardVersion struct {
	ID          string `json:"id"`
	DashboardID string `json:"dashboard_id"`
	Version     int    `json:"version"`
	Title       string `json:"title"`
	Data        string `json:"data"`
	Message     string `json:"message"`
	Ctime       int64  `json:"ctime"`
}

type DashboardVersionSummary struct {
	ID          string `json:"id"`
	DashboardID string `json:"dashboard_id"`
	Version     int    `json:"version"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Ctime       int64  `json:"ctime"`
}
