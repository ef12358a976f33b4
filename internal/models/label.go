package models

type Label struct {
	LabelID   int    `json:"label_id"`
	UserID    int64  `json:"user_id"`
	LabelName string `json:"label_name"`
	Color     string `json:"color"`
}

// LabelMonthStats is the per-label summary for one calendar month.
type LabelMonthStats struct {
	LabelID              int    `json:"label_id"`
	LabelName            string `json:"label_name"`
	Year                 int    `json:"year"`
	Month                int    `json:"month"`
	TotalEvents          int    `json:"total_events"`
	TotalDurationMinutes int    `json:"total_duration_minutes"`
}
