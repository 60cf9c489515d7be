package qamissync

import (
	"regexp"
	"strings"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/sirupsen/logrus"
)

// QAMIS serializes timestamps with microseconds and dates as plain ISO.
const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	dateLayout      = "2006-01-02"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// ToInspection converts a fetched detail record into the local aggregate.
// Pure transformation: narrative markup is stripped, dates are parsed
// (unparseable dates become nil with a warning, validation decides their
// fate later), and nested teams/members/schools/checklists are mapped
// with back-references wired. Missing nested lists map to empty sets.
func ToInspection(detail *InspectionDetail) *models.Inspection {
	logger := config.GetLogger()

	inspection := &models.Inspection{
		Name:             detail.Name,
		InspectionName:   detail.InspectionName,
		WorkflowState:    detail.WorkflowState,
		StartDate:        parseDate(logger, detail.Name, "start_date", detail.StartDate),
		EndDate:          parseDate(logger, detail.Name, "end_date", detail.EndDate),
		Introduction:     StripHTML(detail.Introduction),
		Objectives:       StripHTML(detail.Objectives),
		Methodology:      StripHTML(detail.Methodology),
		ExecutiveSummary: StripHTML(detail.ExecutiveSummary),
		LastModified:     parseTimestamp(logger, detail.Name, "modified", detail.Modified),
	}

	for _, teamDetail := range detail.Teams {
		team := models.InspectionTeam{
			Name:           teamDetail.Name,
			TeamName:       teamDetail.TeamName,
			InspectionName: inspection.Name,
		}
		for _, member := range teamDetail.Members {
			team.Members = append(team.Members, models.TeamMember{
				Name:     member.Name,
				Role:     member.Role,
				TeamName: team.Name,
			})
		}
		for _, school := range teamDetail.Schools {
			team.Schools = append(team.Schools, models.TeamSchool{
				SchoolCode: school.SchoolCode,
				SchoolName: school.SchoolName,
				TeamName:   team.Name,
			})
		}
		inspection.Teams = append(inspection.Teams, team)
	}

	for _, checklist := range detail.Checklists {
		inspection.Checklists = append(inspection.Checklists, models.InspectionChecklist{
			Name:           checklist.Name,
			ChecklistID:    checklist.ID,
			ShortName:      checklist.ShortName,
			PeriodType:     checklist.PeriodType,
			LastUpdated:    parseTimestamp(logger, detail.Name, "last_updated", checklist.LastUpdated),
			InspectionName: inspection.Name,
		})
	}

	return inspection
}

// StripHTML removes anything between angle brackets and trims the result.
// QAMIS narrative fields arrive as rich text; DHIS2 wants plain values.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

func parseDate(logger *logrus.Logger, inspection string, field string, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"module":     "qamissync",
			"inspection": inspection,
			"field":      field,
		}).Warnf("failed to parse date %q", value)
		return nil
	}
	return &t
}

func parseTimestamp(logger *logrus.Logger, inspection string, field string, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"module":     "qamissync",
			"inspection": inspection,
			"field":      field,
		}).Warnf("failed to parse timestamp %q", value)
		return time.Time{}
	}
	return t
}
