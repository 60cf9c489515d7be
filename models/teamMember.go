package models

type TeamMember struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Role     string `gorm:"size:100;not null" json:"role"`
	TeamName string `gorm:"index;size:140;not null" json:"team_name"`
}
