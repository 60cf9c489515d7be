package models

import "time"

// InspectionChecklist carries two identifiers: Name is the QAMIS docname
// (natural key), ChecklistID is the external id the element mapping is
// keyed by.
type InspectionChecklist struct {
	Name           string    `gorm:"primaryKey;size:140" json:"name"`
	ChecklistID    string    `gorm:"index;size:140;not null" json:"checklist_id"`
	ShortName      string    `gorm:"size:100;not null" json:"short_name"`
	PeriodType     string    `gorm:"size:50;not null" json:"period_type"`
	LastUpdated    time.Time `gorm:"type:datetime(6);not null" json:"last_updated"`
	InspectionName string    `gorm:"index;size:140;not null" json:"inspection_name"`
}
