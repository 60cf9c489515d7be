package schoolimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/qamisdata/inspections_backend/models"
	"github.com/xuri/excelize/v2"
)

// Column layout of the school master sheet. The first row is a header
// and is skipped.
const (
	colSchoolCode = iota
	colSchoolName
	colProvince
	colDistrict
	colSector
	colCell
	colVillage
	colStatus
	colOwner
	colLatitude
	colLongitude
	colDay
	colBoarding
	colEmail
	columnCount
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ImportReport summarizes one upload: how many rows became schools and
// which rows were rejected, with the reason per row.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ParseSchoolRows converts raw sheet rows into school records. Rows with
// a missing or non-numeric school code, or an empty name, are skipped and
// reported rather than failing the upload. Row numbering in the report is
// 1-based including the header.
func ParseSchoolRows(rows [][]string) ([]models.School, *ImportReport) {
	report := &ImportReport{}
	var schools []models.School

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNo := i + 1

		if isBlankRow(row) {
			continue
		}
		if len(row) < colEmail {
			report.Skipped = append(report.Skipped,
				fmt.Sprintf("row %d: expected %d columns, got %d", rowNo, columnCount, len(row)))
			continue
		}

		code, err := strconv.Atoi(strings.TrimSpace(cell(row, colSchoolCode)))
		if err != nil || code <= 0 {
			report.Skipped = append(report.Skipped,
				fmt.Sprintf("row %d: invalid school code %q", rowNo, cell(row, colSchoolCode)))
			continue
		}
		name := strings.TrimSpace(cell(row, colSchoolName))
		if name == "" {
			report.Skipped = append(report.Skipped,
				fmt.Sprintf("row %d: school name is empty", rowNo))
			continue
		}

		school := models.School{
			SchoolCode:   code,
			SchoolName:   name,
			Province:     strings.TrimSpace(cell(row, colProvince)),
			District:     strings.TrimSpace(cell(row, colDistrict)),
			Sector:       strings.TrimSpace(cell(row, colSector)),
			Cell:         strings.TrimSpace(cell(row, colCell)),
			Village:      strings.TrimSpace(cell(row, colVillage)),
			SchoolStatus: strings.TrimSpace(cell(row, colStatus)),
			SchoolOwner:  strings.TrimSpace(cell(row, colOwner)),
			Latitude:     parseCoordinate(cell(row, colLatitude)),
			Longitude:    parseCoordinate(cell(row, colLongitude)),
			Day:          strings.TrimSpace(cell(row, colDay)),
			Boarding:     strings.TrimSpace(cell(row, colBoarding)),
		}

		email := strings.TrimSpace(cell(row, colEmail))
		if email != "" {
			if !emailPattern.MatchString(email) {
				report.Skipped = append(report.Skipped,
					fmt.Sprintf("row %d: invalid email %q", rowNo, email))
				continue
			}
			school.SchoolEmail = email
		}

		schools = append(schools, school)
	}

	report.Imported = len(schools)
	return schools, report
}

// ReadCSV loads the rows of a CSV upload. Ragged rows are tolerated;
// ParseSchoolRows reports them per row.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ReadWorkbook loads the rows of the first sheet of an xlsx upload.
func ReadWorkbook(r io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return workbook.GetRows(sheets[0])
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
