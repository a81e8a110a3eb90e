package engine

import (
	"encoding/json"

	"clinic-scheduler/internal/caltime"
	"clinic-scheduler/internal/model"
)

// Changes is the set of fields an update may touch. A nil field is absent.
type Changes struct {
	Status          *model.Status
	Date            *caltime.Date
	Time            *caltime.Clock
	NoShowReason    *string
	ClinicalHistory json.RawMessage
	Notes           *string
	// PatientData is only applied when the update sets status completed.
	PatientData *model.PatientPatch
}

// Empty reports whether no appointment field is present. PatientData alone
// does not count.
func (c Changes) Empty() bool {
	return c.Status == nil && c.Date == nil && c.Time == nil &&
		c.NoShowReason == nil && c.ClinicalHistory == nil && c.Notes == nil
}
