package layout

import "github.com/pkordes/cyclelog/internal/domain"

// Label returns the text shown for an entry.
//
// With showTreatments off the type leads ("Period", "Treatment: Metformin").
// With it on the detail leads ("Period: heavy", "Metformin: 500mg").
func Label(e domain.LogEntry, showTreatments bool) string {
	name := e.Type.DisplayName()
	if e.Type == domain.LogTreatment && e.TreatmentName != "" {
		if !showTreatments {
			return name + ": " + e.TreatmentName
		}
		name = e.TreatmentName
	}
	if showTreatments && e.Description != "" {
		return name + ": " + e.Description
	}
	return name
}
