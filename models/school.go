package models

import (
	"context"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"gorm.io/gorm/clause"
)

// School is master data loaded from spreadsheet uploads, keyed by the
// national school code.
type School struct {
	SchoolCode   int       `gorm:"primaryKey;autoIncrement:false" json:"school_code"`
	SchoolName   string    `gorm:"size:255;not null" json:"school_name"`
	Province     string    `gorm:"size:100" json:"province"`
	District     string    `gorm:"size:100" json:"district"`
	Sector       string    `gorm:"size:100" json:"sector"`
	Cell         string    `gorm:"size:100" json:"cell"`
	Village      string    `gorm:"size:100" json:"village"`
	SchoolStatus string    `gorm:"size:50" json:"school_status"`
	SchoolOwner  string    `gorm:"size:100" json:"school_owner"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Day          string    `gorm:"size:20" json:"day"`
	Boarding     string    `gorm:"size:20" json:"boarding"`
	SchoolEmail  string    `gorm:"size:255" json:"school_email"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertSchools writes imported school rows, replacing existing rows with
// the same school code. Row batches come from one spreadsheet upload.
func UpsertSchools(ctx context.Context, schools []School) error {
	if len(schools) == 0 {
		return nil
	}
	db := config.GetDB()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(schools, 100).Error
}

func FindSchoolByCode(ctx context.Context, code int) (*School, error) {
	db := config.GetDB()
	var school School
	if err := db.WithContext(ctx).Take(&school, "school_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &school, nil
}
