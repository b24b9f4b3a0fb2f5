package fiber

// ReportResponse documents the report envelope. Section objects follow
// event_counts in report order; a section without data is {"note": "..."}.
type ReportResponse struct {
	GeneratedAt      string         `json:"generated_at" example:"2026-02-11T06:00:00Z"`
	EventCounts      map[string]int `json:"event_counts"`
	Adoption         map[string]any `json:"adoption"`
	PrintReliability map[string]any `json:"print_reliability"`
	CrashAnalysis    map[string]any `json:"crash_analysis"`
	UpdateAnalysis   map[string]any `json:"update_analysis"`
	MemoryAnalysis   map[string]any `json:"memory_analysis"`
	HardwareAnalysis map[string]any `json:"hardware_analysis"`
	SettingsAnalysis map[string]any `json:"settings_analysis"`
	PanelUsage       map[string]any `json:"panel_usage_analysis"`
	Connection       map[string]any `json:"connection_analysis"`
	PrintStart       map[string]any `json:"print_start_analysis"`
	ErrorAnalysis    map[string]any `json:"error_analysis"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_window"`
	Message string `json:"message" example:"invalid time window: since must be YYYY-MM-DD"`
}
