package dhis2sync

import (
	"github.com/qamisdata/inspections_backend/models"
)

// DataValue is one row of a DHIS2 dataValueSets upload. Org units are
// addressed by name (orgUnitIdScheme=name on the request).
type DataValue struct {
	DataElement string `json:"dataElement"`
	Period      string `json:"period"`
	OrgUnit     string `json:"orgUnit"`
	Value       string `json:"value"`
}

// Payload is the dataValueSets request body.
type Payload struct {
	DataValues []DataValue `json:"dataValues"`
}

// BuildChecklistPayload emits one data value per resolvable narrative
// field for every checklist x team x school combination of the
// inspection. The mission field carries the methodology text. The period
// is the inspection's end month in DHIS2 monthly format; unresolved
// element mappings are skipped (warned inside Resolve), never fatal.
func BuildChecklistPayload(inspection *models.Inspection, elements *ElementMap) *Payload {
	payload := &Payload{DataValues: []DataValue{}}
	if inspection.EndDate == nil {
		return payload
	}
	period := inspection.EndDate.Format("200601")

	fields := []struct {
		fieldType string
		value     string
	}{
		{FieldTypeIntroduction, inspection.Introduction},
		{FieldTypeObjective, inspection.Objectives},
		{FieldTypeMission, inspection.Methodology},
	}

	for _, checklist := range inspection.Checklists {
		// Resolve once per checklist so an unmapped field warns once, not
		// once per team x school.
		type resolvedField struct {
			element string
			value   string
		}
		resolved := make([]resolvedField, 0, len(fields))
		for _, field := range fields {
			element, ok := elements.Resolve(field.fieldType, checklist.ChecklistID)
			if !ok {
				continue
			}
			resolved = append(resolved, resolvedField{element: element, value: field.value})
		}

		for _, team := range inspection.Teams {
			for _, school := range team.Schools {
				for _, field := range resolved {
					payload.DataValues = append(payload.DataValues, DataValue{
						DataElement: field.element,
						Period:      period,
						OrgUnit:     school.SchoolName,
						Value:       field.value,
					})
				}
			}
		}
	}
	return payload
}
