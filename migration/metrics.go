// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package migration

// Metrics file names under the snapshot logs directory.
const (
	ExportMetricsFile = "export-metrics.json"
	ImportMetricsFile = "import-metrics.json"
)

// ExportMetrics summarises one export run.
type ExportMetrics struct {
	TotalUsers int      `json:"total_users"`
	UserNames  []string `json:"user_name_list"`
	TotalTeams int      `json:"total_teams"`
	TeamNames  []string `json:"team_name_list"`
}

// ImportMetrics summarises one import run. TeamNames reflects the
// destination's team list after replay, not the snapshot.
type ImportMetrics struct {
	TotalTeams  int      `json:"total_teams"`
	TeamNames   []string `json:"team_name_list"`
	FailedTeams []string `json:"failed_team_list,omitempty"`
}
