package qamissync

import "encoding/json"

// Typed records for each QAMIS resource. The API wraps every response in
// a {"data": ...} envelope; decode fails closed when the envelope or a
// required field is missing.

// InspectionSummary is one row of the approved-inspection listing.
type InspectionSummary struct {
	Name           string `json:"name"`
	InspectionName string `json:"inspection_name"`
	WorkflowState  string `json:"workflow_state"`
	Modified       string `json:"modified"`
}

// InspectionDetail is the full Inspection document. Team links reference
// separate Inspection Team documents fetched individually; Teams holds
// the resolved details.
type InspectionDetail struct {
	Name             string            `json:"name"`
	InspectionName   string            `json:"inspection_name"`
	WorkflowState    string            `json:"workflow_state"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	Introduction     string            `json:"introduction"`
	Objectives       string            `json:"objectives"`
	Methodology      string            `json:"methodology"`
	ExecutiveSummary string            `json:"executive_summary"`
	Modified         string            `json:"modified"`
	TeamLinks        []TeamLink        `json:"inspection_teams"`
	Checklists       []ChecklistRecord `json:"checklists"`

	Teams []TeamDetail `json:"-"`
}

// TeamLink is a reference row inside the inspection document.
type TeamLink struct {
	Name         string `json:"name"`
	TeamName     string `json:"team_name"`
	MembersCount int    `json:"members_count"`
	SchoolsCount int    `json:"schools_count"`
}

// TeamDetail is the full Inspection Team document.
type TeamDetail struct {
	Name     string         `json:"name"`
	TeamName string         `json:"team_name"`
	Members  []MemberRecord `json:"members"`
	Schools  []SchoolRecord `json:"schools"`
}

type MemberRecord struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type SchoolRecord struct {
	SchoolCode string `json:"school_code"`
	SchoolName string `json:"school_name"`
}

type ChecklistRecord struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	ShortName   string `json:"short_name"`
	PeriodType  string `json:"period_type"`
	LastUpdated string `json:"last_updated"`
}

// SchoolIdentificationRecord is the QAMIS school profile document, used
// by the school-identification sweep.
type SchoolIdentificationRecord struct {
	Name                     string `json:"name"`
	SchoolCode               int    `json:"school_code"`
	Status                   string `json:"status"`
	SchoolOwner              string `json:"school_owner"`
	AccommodationStatus      string `json:"accommodation_status"`
	YearOfEstablishment      int    `json:"year_of_establishment"`
	Village                  string `json:"village"`
	Cell                     string `json:"cell"`
	Sector                   string `json:"sector"`
	District                 string `json:"district"`
	Province                 string `json:"province"`
	HeadteacherName          string `json:"ht_name"`
	HeadteacherQualification string `json:"qualification_of_headteacher"`
	HeadteacherTelephone     string `json:"telephone"`
	NumberOfBoys             int    `json:"number_of_boys"`
	NumberOfGirls            int    `json:"number_of_girls"`
	TotalStudents            int    `json:"total_nr_students"`
	StudentsWithSEN          int    `json:"students_with_sen"`
	NumberOfMaleTeachers     int    `json:"number_of_male_teachers"`
	NumberOfFemaleTeachers   int    `json:"number_of_female_teachers"`
	TotalTeachers            int    `json:"number_of_teachers"`
	NumberOfClassrooms       int    `json:"nbr_of_classrooms"`
	NumberOfLatrines         int    `json:"nbr_of_latrines"`
	Modified                 string `json:"modified"`
}

type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type detailEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// emptyData reports whether an envelope carried no document: field
// absent, empty, or JSON null.
func emptyData(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
