package models

import "time"

// InspectionTeam is owned exclusively by its Inspection; the QAMIS team
// docname is the natural key.
type InspectionTeam struct {
	Name           string    `gorm:"primaryKey;size:140" json:"name"`
	TeamName       string    `gorm:"size:255;not null" json:"team_name"`
	InspectionName string    `gorm:"index;size:140;not null" json:"inspection_name"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Members []TeamMember `gorm:"foreignKey:TeamName;references:Name" json:"members"`
	Schools []TeamSchool `gorm:"foreignKey:TeamName;references:Name" json:"schools"`
}
