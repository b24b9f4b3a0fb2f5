package domain

// Schema describes which parts of a raw event survive normalization.
//
//   - Fields are top-level values copied as-is.
//   - Sections are nested objects flattened into "section.key" fields.
//   - Lists are list-valued fields passed through without flattening.
type Schema struct {
	Fields   []string
	Sections []string
	Lists    []string
}

var schemas = map[EventType]Schema{
	EventSession: {
		Sections: []string{"app", "host", "printer"},
		Lists:    []string{"features"},
	},
	EventPrintOutcome: {
		Fields: []string{
			"outcome",
			"duration_sec",
			"phases_completed",
			"filament_used_mm",
			"filament_type",
			"nozzle_temp",
			"bed_temp",
		},
	},
	EventCrash: {
		Fields: []string{"signal", "signal_name", "app_version", "uptime_sec", "backtrace"},
	},
	EventUpdateFailed: {
		Fields: []string{
			"reason",
			"version",
			"from_version",
			"platform",
			"http_code",
			"file_size",
			"exit_code",
		},
	},
	EventUpdateSuccess: {
		Fields: []string{"version", "from_version", "platform"},
	},
	EventMemorySnapshot: {
		Fields: []string{
			"trigger",
			"uptime_sec",
			"rss_kb",
			"vm_size_kb",
			"vm_data_kb",
			"vm_swap_kb",
			"vm_peak_kb",
			"vm_hwm_kb",
		},
	},
	EventHardwareProfile: {
		Fields: []string{"display_backend"},
		Sections: []string{
			"printer",
			"mcus",
			"build_volume",
			"extruders",
			"fans",
			"steppers",
			"leds",
			"sensors",
			"probe",
			"capabilities",
			"ams",
			"tools",
			"macros",
			"plugins",
		},
	},
	EventSettingsSnapshot: {
		Fields: []string{
			"theme",
			"brightness_pct",
			"screensaver_timeout_sec",
			"screen_blank_timeout_sec",
			"locale",
			"sound_enabled",
			"auto_update_channel",
			"animations_enabled",
			"time_format",
		},
	},
	EventPanelUsage: {
		Fields:   []string{"session_duration_sec", "overlay_open_count"},
		Sections: []string{"panel_time_sec", "panel_visits"},
	},
	EventConnectionStability: {
		Fields: []string{
			"session_duration_sec",
			"connect_count",
			"disconnect_count",
			"total_connected_sec",
			"total_disconnected_sec",
			"longest_disconnect_sec",
			"klippy_error_count",
			"klippy_shutdown_count",
		},
	},
	EventPrintStartContext: {
		Fields: []string{
			"source",
			"has_thumbnail",
			"file_size_bucket",
			"estimated_duration_bucket",
			"slicer",
			"tool_count_used",
			"ams_active",
		},
	},
	EventErrorEncountered: {
		Fields: []string{"category", "code", "context", "uptime_sec"},
	},
}

// SchemaFor returns the extraction schema for t. Unrecognized types get
// an empty schema, so only the universal fields survive.
func SchemaFor(t EventType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}
