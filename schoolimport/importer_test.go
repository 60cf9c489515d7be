package schoolimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func header() []string {
	return []string{
		"School Code", "School Name", "Province", "District", "Sector",
		"Cell", "Village", "Status", "Owner", "Latitude", "Longitude",
		"Day", "Boarding", "Email",
	}
}

func validRow() []string {
	return []string{
		"110101", "School A", "Kigali City", "Gasabo", "Remera",
		"Nyabisindu", "Amajyambere", "ACTIVE", "GoR", "-1.9441", "30.0619",
		"Yes", "No", "schoola@example.rw",
	}
}

func TestParseSchoolRowsHappyPath(t *testing.T) {
	schools, report := ParseSchoolRows([][]string{header(), validRow()})

	require.Len(t, schools, 1)
	require.Empty(t, report.Skipped)
	require.Equal(t, 1, report.Imported)

	school := schools[0]
	require.Equal(t, 110101, school.SchoolCode)
	require.Equal(t, "School A", school.SchoolName)
	require.Equal(t, "Gasabo", school.District)
	require.NotNil(t, school.Latitude)
	require.InDelta(t, -1.9441, *school.Latitude, 0.0001)
	require.Equal(t, "schoola@example.rw", school.SchoolEmail)
}

func TestParseSchoolRowsSkipsBadCode(t *testing.T) {
	bad := validRow()
	bad[0] = "not-a-number"

	schools, report := ParseSchoolRows([][]string{header(), bad, validRow()})

	require.Len(t, schools, 1)
	require.Len(t, report.Skipped, 1)
	require.Contains(t, report.Skipped[0], "invalid school code")
}

func TestParseSchoolRowsSkipsBadEmail(t *testing.T) {
	bad := validRow()
	bad[13] = "not-an-email"

	schools, report := ParseSchoolRows([][]string{header(), bad})

	require.Empty(t, schools)
	require.Len(t, report.Skipped, 1)
	require.Contains(t, report.Skipped[0], "invalid email")
}

func TestParseSchoolRowsEmptyEmailIsAllowed(t *testing.T) {
	row := validRow()
	row[13] = ""

	schools, report := ParseSchoolRows([][]string{header(), row})

	require.Len(t, schools, 1)
	require.Empty(t, report.Skipped)
	require.Empty(t, schools[0].SchoolEmail)
}

func TestParseSchoolRowsIgnoresBlankRows(t *testing.T) {
	blank := make([]string, 14)

	schools, report := ParseSchoolRows([][]string{header(), blank, validRow()})

	require.Len(t, schools, 1)
	require.Empty(t, report.Skipped)
}

func TestParseSchoolRowsReportsShortRows(t *testing.T) {
	schools, report := ParseSchoolRows([][]string{header(), {"110101", "School A"}})

	require.Empty(t, schools)
	require.Len(t, report.Skipped, 1)
	require.Contains(t, report.Skipped[0], "columns")
}

func TestReadCSVToleratesRaggedRows(t *testing.T) {
	csvData := strings.Join([]string{
		strings.Join(header(), ","),
		strings.Join(validRow(), ","),
		"220202,School B",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	schools, report := ParseSchoolRows(rows)
	require.Len(t, schools, 1)
	require.Len(t, report.Skipped, 1)
}
