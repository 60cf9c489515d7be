package qamissync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/qamisdata/inspections_backend/models"
	"github.com/qamisdata/inspections_backend/qamissync"
)

func sampleDetail(modified string) *qamissync.InspectionDetail {
	return &qamissync.InspectionDetail{
		Name:           "INS-100",
		InspectionName: "Term 1 Inspection",
		WorkflowState:  models.WorkflowStateApproved,
		StartDate:      "2024-01-10",
		EndDate:        "2024-01-31",
		Introduction:   "<p>Intro</p>",
		Objectives:     "<p>Goals</p>",
		Methodology:    "<p>How</p>",
		Modified:       modified,
		Teams: []qamissync.TeamDetail{
			{
				Name:     "TEAM-100",
				TeamName: "North Team",
				Members:  []qamissync.MemberRecord{{Name: "Alice", Role: "Lead"}},
				Schools:  []qamissync.SchoolRecord{{SchoolCode: "110101", SchoolName: "School A"}},
			},
		},
		Checklists: []qamissync.ChecklistRecord{
			{Name: "CL-100", ID: "CHK1", ShortName: "Hygiene", PeriodType: "Monthly", LastUpdated: "2024-01-05 10:00:00.000000"},
		},
	}
}

func countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := config.GetDB().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSyncInspectionIsIdempotentForUnchangedTimestamp(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	written, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000000")))
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !written {
		t.Fatalf("expected first sync to write")
	}

	written, err = qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000000")))
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if written {
		t.Fatalf("expected unchanged timestamp to be a no-op")
	}

	if n := countRows(t, &models.TeamMember{}); n != 1 {
		t.Fatalf("expected 1 member row, got %d", n)
	}
	if n := countRows(t, &models.InspectionChecklist{}); n != 1 {
		t.Fatalf("expected 1 checklist row, got %d", n)
	}
}

func TestSyncInspectionKeepsMicrosecondPrecision(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	// Sub-millisecond fraction: if the column were datetime(3) MySQL
	// would round it away and the identical record would look newer
	// than the stored one on every pass.
	written, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000400")))
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !written {
		t.Fatalf("expected first sync to write")
	}

	written, err = qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000400")))
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if written {
		t.Fatalf("expected identical timestamp to be a no-op after storage round trip")
	}

	stored, err := models.FindInspectionByName(ctx, "INS-100")
	if err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if got := stored.LastModified.Nanosecond(); got != 400000 {
		t.Fatalf("expected microseconds to survive storage, got %dns", got)
	}
	if stored.Synced == nil || *stored.Synced {
		t.Fatalf("expected synced flag untouched by the no-op pass")
	}
}

func TestSyncInspectionNewerRevisionReplacesChildren(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	if _, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000000"))); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	// Mark exported so we can observe the flag reset on overwrite.
	if err := models.MarkInspectionSynced(ctx, "INS-100"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	newer := sampleDetail("2024-01-12 08:00:00.000000")
	newer.InspectionName = "Term 1 Inspection (revised)"
	newer.Teams = []qamissync.TeamDetail{
		{
			Name:     "TEAM-200",
			TeamName: "South Team",
			Members: []qamissync.MemberRecord{
				{Name: "Carol", Role: "Lead"},
				{Name: "Dan", Role: "Inspector"},
			},
			Schools: []qamissync.SchoolRecord{{SchoolCode: "220202", SchoolName: "School B"}},
		},
	}

	written, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(newer))
	if err != nil {
		t.Fatalf("overwrite sync: %v", err)
	}
	if !written {
		t.Fatalf("expected newer revision to write")
	}

	stored, err := models.FindInspectionByName(ctx, "INS-100")
	if err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if stored.InspectionName != "Term 1 Inspection (revised)" {
		t.Fatalf("scalar not overwritten: %q", stored.InspectionName)
	}
	if stored.Synced == nil || *stored.Synced {
		t.Fatalf("expected synced flag reset on overwrite")
	}
	if len(stored.Teams) != 1 || stored.Teams[0].Name != "TEAM-200" {
		t.Fatalf("old team set not replaced: %+v", stored.Teams)
	}
	if len(stored.Teams[0].Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(stored.Teams[0].Members))
	}

	// Old children are gone, not orphaned.
	var orphans int64
	if err := config.GetDB().Model(&models.TeamMember{}).Where("team_name = ?", "TEAM-100").Count(&orphans).Error; err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("expected old members deleted, found %d", orphans)
	}
}

func TestSyncInspectionRejectsStaleRevision(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	if _, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(sampleDetail("2024-01-10 09:00:00.000000"))); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	stale := sampleDetail("2024-01-09 23:59:59.000000")
	stale.InspectionName = "should not land"

	written, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(stale))
	if err != nil {
		t.Fatalf("stale sync: %v", err)
	}
	if written {
		t.Fatalf("expected stale revision to be skipped")
	}

	stored, err := models.FindInspectionByName(ctx, "INS-100")
	if err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if stored.InspectionName != "Term 1 Inspection" {
		t.Fatalf("stale revision overwrote the store: %q", stored.InspectionName)
	}
}

func TestSyncInspectionValidationRejectsEndBeforeStart(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	bad := sampleDetail("2024-01-10 09:00:00.000000")
	bad.Name = "INS-BAD"
	bad.StartDate = "2024-01-31"
	bad.EndDate = "2024-01-10"

	_, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(bad))
	var vErr *qamissync.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if n := countRows(t, &models.Inspection{}); n != 0 {
		t.Fatalf("expected no rows written, got %d", n)
	}
}

func TestSyncInspectionNestedValidationWritesNothing(t *testing.T) {
	setupIntegrationDB(t)
	ctx := context.Background()

	bad := sampleDetail("2024-01-10 09:00:00.000000")
	bad.Name = "INS-NESTED"
	bad.Teams[0].Members = []qamissync.MemberRecord{{Name: "Eve", Role: ""}}

	_, err := qamissync.SyncInspection(ctx, qamissync.ToInspection(bad))
	var vErr *qamissync.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Transaction rolled back: no partial aggregate visible.
	if n := countRows(t, &models.Inspection{}); n != 0 {
		t.Fatalf("expected inspection rollback, got %d rows", n)
	}
	if n := countRows(t, &models.InspectionTeam{}); n != 0 {
		t.Fatalf("expected team rollback, got %d rows", n)
	}
}
