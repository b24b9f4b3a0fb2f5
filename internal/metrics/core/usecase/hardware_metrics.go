package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
)

// Capabilities is the set of boolean hardware flags reported as
// adoption percentages.
var Capabilities = []string{
	"capabilities.has_chamber",
	"capabilities.has_accelerometer",
	"capabilities.has_firmware_retraction",
	"capabilities.has_exclude_object",
	"capabilities.has_timelapse",
	"capabilities.has_klippain_shaketune",
	"probe.has_probe",
	"probe.has_bed_mesh",
	"probe.has_qgl",
}

var hardwareDistributions = []distributionSpec{
	{"printer_model_distribution", "printer.detected_model", 20},
	{"kinematics_distribution", "printer.kinematics", 0},
	{"primary_mcu_distribution", "mcus.primary", 10},
	{"extruder_count_distribution", "extruders.count", 0},
}

func HardwareMetrics(rels Relations) *domain.Metrics {
	h := rels.Of(events.EventHardwareProfile)
	if h.Empty() {
		return domain.Note("No hardware profile data")
	}

	m := domain.NewOrdered[any]()
	m.Set("total_profiles", h.Len())
	setDistributions(m, h, hardwareDistributions)
	for _, capability := range Capabilities {
		m.Set(capability+"_pct", truePct(h, capability))
	}
	m.Set("ams_type_distribution", distribution(h, "ams.type", 0))
	m.Set("display_backend_distribution", distribution(h, "display_backend", 0))
	return m
}
