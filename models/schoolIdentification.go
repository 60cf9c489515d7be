package models

import (
	"context"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"gorm.io/gorm/clause"
)

// SchoolIdentification mirrors the QAMIS "School Identification" doctype:
// the self-reported school profile collected ahead of inspections. Keyed
// by the QAMIS docname (the school name).
type SchoolIdentification struct {
	SchoolName               string    `gorm:"primaryKey;size:255" json:"school_name"`
	SchoolCode               int       `gorm:"index" json:"school_code"`
	SchoolStatus             string    `gorm:"size:50" json:"school_status"`
	SchoolOwner              string    `gorm:"size:100" json:"school_owner"`
	AccommodationStatus      string    `gorm:"size:50" json:"accommodation_status"`
	YearOfEstablishment      int       `json:"year_of_establishment"`
	Village                  string    `gorm:"size:100" json:"village"`
	Cell                     string    `gorm:"size:100" json:"cell"`
	Sector                   string    `gorm:"size:100" json:"sector"`
	District                 string    `gorm:"size:100" json:"district"`
	Province                 string    `gorm:"size:100" json:"province"`
	HeadteacherName          string    `gorm:"size:255" json:"headteacher_name"`
	HeadteacherQualification string    `gorm:"size:100" json:"headteacher_qualification"`
	HeadteacherTelephone     string    `gorm:"size:50" json:"headteacher_telephone"`
	NumberOfBoys             int       `json:"number_of_boys"`
	NumberOfGirls            int       `json:"number_of_girls"`
	TotalStudents            int       `json:"total_students"`
	StudentsWithSEN          int       `json:"students_with_sen"`
	NumberOfMaleTeachers     int       `json:"number_of_male_teachers"`
	NumberOfFemaleTeachers   int       `json:"number_of_female_teachers"`
	TotalTeachers            int       `json:"total_teachers"`
	NumberOfClassrooms       int       `json:"number_of_classrooms"`
	NumberOfLatrines         int       `json:"number_of_latrines"`
	LastModified             time.Time `gorm:"type:datetime(6);not null" json:"last_modified"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertSchoolIdentification replaces the stored profile for one school.
func UpsertSchoolIdentification(ctx context.Context, profile *SchoolIdentification) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(profile).Error
}
