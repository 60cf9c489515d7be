package qamissync

import (
	"context"
	"errors"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncInspection reconciles one incoming inspection against the store.
//
// A record with no stored counterpart is inserted unconditionally. When a
// stored record exists, the incoming one wins only if its last-modified
// timestamp is strictly after the stored one; anything else is a no-op,
// not an error. An overwrite clears the stored children first and inserts
// the incoming aggregate inside one transaction, and resets the export
// flag so the new revision is picked up by the next sweep.
//
// Returns true when a write happened.
func SyncInspection(ctx context.Context, incoming *models.Inspection) (bool, error) {
	if err := validateInspection(incoming); err != nil {
		return false, err
	}

	db := config.GetDB()

	var stored models.Inspection
	err := db.WithContext(ctx).
		Select("name", "last_modified").
		Take(&stored, "name = ?", incoming.Name).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, &SyncError{Entity: "inspection", Name: incoming.Name, Err: err}
	}
	if exists && !incoming.LastModified.After(stored.LastModified) {
		config.GetLogger().WithFields(logrus.Fields{
			"module":     "qamissync",
			"inspection": incoming.Name,
		}).Debug("stored record is current, skipping")
		return false, nil
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, &SyncError{Entity: "inspection", Name: incoming.Name, Err: tx.Error}
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()

	if exists {
		if err := models.DeleteInspectionChildren(tx, incoming.Name); err != nil {
			tx.Rollback()
			return false, &SyncError{Entity: "inspection", Name: incoming.Name, Err: err}
		}
	}

	if err := persistAggregate(tx, incoming); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, &SyncError{Entity: "inspection", Name: incoming.Name, Err: err}
	}
	return true, nil
}

// persistAggregate writes the parent row and every child row explicitly.
// Children are inserted by hand rather than through association writes so
// the clear-and-replace contract stays visible in one place.
func persistAggregate(tx *gorm.DB, inspection *models.Inspection) error {
	synced := false
	parent := *inspection
	parent.Teams = nil
	parent.Checklists = nil
	parent.Synced = &synced

	err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&parent).Error
	if err != nil {
		return &SyncError{Entity: "inspection", Name: inspection.Name, Err: err}
	}

	for i := range inspection.Teams {
		team := inspection.Teams[i]
		if err := validateTeam(&team); err != nil {
			return err
		}
		members := team.Members
		schools := team.Schools
		team.Members = nil
		team.Schools = nil
		team.InspectionName = inspection.Name

		if err := tx.Create(&team).Error; err != nil {
			return &SyncError{Entity: "team", Name: team.Name, Err: err}
		}
		for j := range members {
			member := members[j]
			if err := validateMember(team.Name, &member); err != nil {
				return err
			}
			member.ID = 0
			member.TeamName = team.Name
			if err := tx.Create(&member).Error; err != nil {
				return &SyncError{Entity: "team member", Name: member.Name, Err: err}
			}
		}
		for j := range schools {
			school := schools[j]
			if err := validateSchool(team.Name, &school); err != nil {
				return err
			}
			school.ID = 0
			school.TeamName = team.Name
			if err := tx.Create(&school).Error; err != nil {
				return &SyncError{Entity: "team school", Name: school.SchoolName, Err: err}
			}
		}
	}

	for i := range inspection.Checklists {
		checklist := inspection.Checklists[i]
		if err := validateChecklist(inspection.Name, &checklist); err != nil {
			return err
		}
		checklist.InspectionName = inspection.Name
		if err := tx.Create(&checklist).Error; err != nil {
			return &SyncError{Entity: "checklist", Name: checklist.Name, Err: err}
		}
	}

	return nil
}

func validateInspection(inspection *models.Inspection) error {
	if inspection.Name == "" {
		return newValidationError("inspection", "name is required")
	}
	if inspection.InspectionName == "" {
		return newValidationError("inspection "+inspection.Name, "inspection name is required")
	}
	if inspection.WorkflowState == "" {
		return newValidationError("inspection "+inspection.Name, "workflow state is required")
	}
	if inspection.StartDate == nil || inspection.EndDate == nil {
		return newValidationError("inspection "+inspection.Name, "start and end dates are required")
	}
	if inspection.EndDate.Before(*inspection.StartDate) {
		return newValidationError("inspection "+inspection.Name, "end date is before start date")
	}
	if inspection.LastModified.IsZero() {
		return newValidationError("inspection "+inspection.Name, "last modified timestamp is required")
	}
	return nil
}

func validateTeam(team *models.InspectionTeam) error {
	if team.Name == "" {
		return newValidationError("team", "name is required")
	}
	if team.TeamName == "" {
		return newValidationError("team "+team.Name, "team name is required")
	}
	return nil
}

func validateMember(teamName string, member *models.TeamMember) error {
	if member.Name == "" {
		return newValidationError("team "+teamName, "member name is required")
	}
	if member.Role == "" {
		return newValidationError("team "+teamName, "member role is required for "+member.Name)
	}
	return nil
}

func validateSchool(teamName string, school *models.TeamSchool) error {
	if school.SchoolCode == "" || school.SchoolName == "" {
		return newValidationError("team "+teamName, "school code and name are required")
	}
	return nil
}

func validateChecklist(inspectionName string, checklist *models.InspectionChecklist) error {
	if checklist.Name == "" || checklist.ChecklistID == "" {
		return newValidationError("inspection "+inspectionName, "checklist name and id are required")
	}
	if checklist.ShortName == "" || checklist.PeriodType == "" {
		return newValidationError("checklist "+checklist.Name, "short name and period type are required")
	}
	if checklist.LastUpdated.IsZero() {
		return newValidationError("checklist "+checklist.Name, "last updated timestamp is required")
	}
	return nil
}
