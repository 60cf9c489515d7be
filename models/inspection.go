package models

import (
	"context"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"gorm.io/gorm"
)

// WorkflowStateApproved is the QAMIS workflow state that makes an
// inspection eligible for ingestion and export.
const WorkflowStateApproved = "Approved by DG"

// Inspection is the aggregate root of the pipeline. The QAMIS docname is
// the natural key; Teams and Checklists are owned exclusively and replaced
// as a unit whenever a newer revision arrives from the source.
//
// Source timestamps carry microseconds; their columns must be datetime(6)
// or MySQL rounds them and the strictly-after compare re-syncs unchanged
// records on every pass.
type Inspection struct {
	Name             string     `gorm:"primaryKey;size:140" json:"name"`
	InspectionName   string     `gorm:"size:255;not null" json:"inspection_name"`
	StartDate        *time.Time `gorm:"type:date" json:"start_date"`
	EndDate          *time.Time `gorm:"type:date" json:"end_date"`
	Introduction     string     `gorm:"type:text" json:"introduction"`
	Objectives       string     `gorm:"type:text" json:"objectives"`
	Methodology      string     `gorm:"type:text" json:"methodology"`
	ExecutiveSummary string     `gorm:"type:text" json:"executive_summary"`
	WorkflowState    string     `gorm:"index;size:100;not null" json:"workflow_state"`
	LastModified     time.Time  `gorm:"type:datetime(6);not null" json:"last_modified"`
	Synced           *bool      `gorm:"index;not null;default:false" json:"synced"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Teams      []InspectionTeam      `gorm:"foreignKey:InspectionName;references:Name" json:"teams"`
	Checklists []InspectionChecklist `gorm:"foreignKey:InspectionName;references:Name" json:"checklists"`
}

// FindInspectionByName loads one inspection with its full subgraph.
func FindInspectionByName(ctx context.Context, name string) (*Inspection, error) {
	db := config.GetDB()
	var inspection Inspection
	err := db.WithContext(ctx).
		Preload("Teams.Members").
		Preload("Teams.Schools").
		Preload("Checklists").
		Take(&inspection, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &inspection, nil
}

// FindUnsyncedApprovedInspections returns every approved inspection that
// has not yet been exported, children preloaded for payload building.
func FindUnsyncedApprovedInspections(ctx context.Context) ([]Inspection, error) {
	db := config.GetDB()
	var inspections []Inspection
	err := db.WithContext(ctx).
		Preload("Teams.Members").
		Preload("Teams.Schools").
		Preload("Checklists").
		Where("workflow_state = ? AND synced = ?", WorkflowStateApproved, false).
		Order("name").
		Find(&inspections).Error
	if err != nil {
		return nil, err
	}
	return inspections, nil
}

// FindMissedInspections returns approved, unsynced inspections whose start
// date has been reached; candidates for the daily reschedule sweep.
func FindMissedInspections(ctx context.Context, today time.Time) ([]Inspection, error) {
	db := config.GetDB()
	var inspections []Inspection
	err := db.WithContext(ctx).
		Where("workflow_state = ? AND synced = ? AND start_date <= ?",
			WorkflowStateApproved, false, today.Format("2006-01-02")).
		Order("name").
		Find(&inspections).Error
	if err != nil {
		return nil, err
	}
	return inspections, nil
}

// MarkInspectionSynced flips the export flag after a successful upload.
func MarkInspectionSynced(ctx context.Context, name string) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Model(&Inspection{}).
		Where("name = ?", name).
		Update("synced", true).Error
}

// FindAllInspections returns one page of stored inspections for the query
// endpoints; children are not preloaded.
func FindAllInspections(ctx context.Context, limit int, offset int) ([]Inspection, int64, error) {
	db := config.GetDB()
	if limit <= 0 || limit > config.SearchLimit {
		limit = config.SearchLimit
	}
	var total int64
	if err := db.WithContext(ctx).Model(&Inspection{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var inspections []Inspection
	err := db.WithContext(ctx).
		Order("last_modified DESC").
		Limit(limit).
		Offset(offset).
		Find(&inspections).Error
	if err != nil {
		return nil, 0, err
	}
	return inspections, total, nil
}

// DeleteInspectionChildren removes every child row of the stored
// inspection, bottom-up so the team rows go last. Runs inside the caller's
// transaction: the reconciler clears before it re-inserts, never relying
// on cascade semantics.
func DeleteInspectionChildren(tx *gorm.DB, inspectionName string) error {
	teamNames := tx.Model(&InspectionTeam{}).
		Select("name").
		Where("inspection_name = ?", inspectionName)

	if err := tx.Where("team_name IN (?)", teamNames).Delete(&TeamMember{}).Error; err != nil {
		return err
	}
	if err := tx.Where("team_name IN (?)", teamNames).Delete(&TeamSchool{}).Error; err != nil {
		return err
	}
	if err := tx.Where("inspection_name = ?", inspectionName).Delete(&InspectionTeam{}).Error; err != nil {
		return err
	}
	if err := tx.Where("inspection_name = ?", inspectionName).Delete(&InspectionChecklist{}).Error; err != nil {
		return err
	}
	return nil
}
