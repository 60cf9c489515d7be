package qamissync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToInspectionMapsScalarsAndStripsMarkup(t *testing.T) {
	detail := &InspectionDetail{
		Name:             "INS-1",
		InspectionName:   "Term 1 Inspection",
		WorkflowState:    "Approved by DG",
		StartDate:        "2024-01-10",
		EndDate:          "2024-01-31",
		Introduction:     "<p>Welcome to the <b>inspection</b></p>",
		Objectives:       "<ul><li>First</li></ul>",
		Methodology:      "  plain text  ",
		ExecutiveSummary: "<div><span>Summary</span></div>",
		Modified:         "2024-01-10 09:00:00.000000",
	}

	inspection := ToInspection(detail)

	require.Equal(t, "INS-1", inspection.Name)
	require.Equal(t, "Term 1 Inspection", inspection.InspectionName)
	require.Equal(t, "Approved by DG", inspection.WorkflowState)
	require.Equal(t, "Welcome to the inspection", inspection.Introduction)
	require.Equal(t, "First", inspection.Objectives)
	require.Equal(t, "plain text", inspection.Methodology)
	require.Equal(t, "Summary", inspection.ExecutiveSummary)

	require.NotNil(t, inspection.StartDate)
	require.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), *inspection.StartDate)
	require.NotNil(t, inspection.EndDate)
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *inspection.EndDate)
	require.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), inspection.LastModified)
}

func TestToInspectionUnparseableDatesBecomeNil(t *testing.T) {
	detail := &InspectionDetail{
		Name:          "INS-2",
		WorkflowState: "Approved by DG",
		StartDate:     "10/01/2024",
		EndDate:       "",
		Modified:      "not a timestamp",
	}

	inspection := ToInspection(detail)

	require.Nil(t, inspection.StartDate)
	require.Nil(t, inspection.EndDate)
	require.True(t, inspection.LastModified.IsZero())
}

func TestToInspectionMapsNestedEntitiesWithBackReferences(t *testing.T) {
	detail := &InspectionDetail{
		Name:          "INS-3",
		WorkflowState: "Approved by DG",
		Modified:      "2024-02-01 08:30:00.000000",
		Teams: []TeamDetail{
			{
				Name:     "TEAM-1",
				TeamName: "North Team",
				Members: []MemberRecord{
					{Name: "Alice", Role: "Lead Inspector"},
					{Name: "Bob", Role: "Inspector"},
				},
				Schools: []SchoolRecord{
					{SchoolCode: "110101", SchoolName: "School A"},
				},
			},
		},
		Checklists: []ChecklistRecord{
			{Name: "CL-1", ID: "CHK1", ShortName: "Hygiene", PeriodType: "Monthly", LastUpdated: "2024-01-05 10:00:00.000000"},
		},
	}

	inspection := ToInspection(detail)

	require.Len(t, inspection.Teams, 1)
	team := inspection.Teams[0]
	require.Equal(t, "INS-3", team.InspectionName)
	require.Len(t, team.Members, 2)
	require.Equal(t, "TEAM-1", team.Members[0].TeamName)
	require.Equal(t, "Lead Inspector", team.Members[0].Role)
	require.Len(t, team.Schools, 1)
	require.Equal(t, "TEAM-1", team.Schools[0].TeamName)
	require.Equal(t, "School A", team.Schools[0].SchoolName)

	require.Len(t, inspection.Checklists, 1)
	checklist := inspection.Checklists[0]
	require.Equal(t, "INS-3", checklist.InspectionName)
	require.Equal(t, "CHK1", checklist.ChecklistID)
	require.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), checklist.LastUpdated)
}

func TestToInspectionMissingNestedListsAreEmpty(t *testing.T) {
	inspection := ToInspection(&InspectionDetail{
		Name:          "INS-4",
		WorkflowState: "Approved by DG",
		Modified:      "2024-02-01 08:30:00.000000",
	})

	require.Empty(t, inspection.Teams)
	require.Empty(t, inspection.Checklists)
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"no markup", "no markup"},
		{"<p>hello</p>", "hello"},
		{"<div class=\"x\">a<br/>b</div>", "ab"},
		{"  <b> padded </b>  ", "padded"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StripHTML(tc.in), "input %q", tc.in)
	}
}
