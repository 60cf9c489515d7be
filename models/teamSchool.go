package models

// TeamSchool is a school visited by a team during an inspection. The
// school name doubles as the DHIS2 org unit in exported payloads.
type TeamSchool struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	SchoolCode string `gorm:"size:50;not null" json:"school_code"`
	SchoolName string `gorm:"size:255;not null" json:"school_name"`
	TeamName   string `gorm:"index;size:140;not null" json:"team_name"`
}
