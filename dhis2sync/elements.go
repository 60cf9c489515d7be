package dhis2sync

import (
	"os"
	"strings"

	"github.com/qamisdata/inspections_backend/config"
	"github.com/sirupsen/logrus"
)

// elementKeyPrefix marks the configuration entries that map a narrative
// field of a checklist to a DHIS2 data element. Entries look like
//
//	dataElement.<fieldType>.<checklistId>=<elementId>
//
// with fieldType one of introduction, objective, mission. Operators remap
// fields to destination elements without a code change.
const elementKeyPrefix = "dataElement."

// Narrative field types recognised by the element mapping.
const (
	FieldTypeIntroduction = "introduction"
	FieldTypeObjective    = "objective"
	FieldTypeMission      = "mission"
)

// ElementMap resolves (fieldType, checklistId) to a DHIS2 data element
// id. Built once at startup; read-only afterwards.
type ElementMap struct {
	entries map[string]string
	logger  *logrus.Logger
}

// NewElementMap builds a mapper from explicit entries keyed by
// "<fieldType>.<checklistId>".
func NewElementMap(entries map[string]string) *ElementMap {
	m := make(map[string]string, len(entries))
	for key, value := range entries {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		m[key] = value
	}
	return &ElementMap{entries: m, logger: config.GetLogger()}
}

// LoadElementMapFromEnv scans the process environment for every entry
// under the dataElement. prefix. godotenv loads dotted keys from .env
// verbatim, so the whole mapping lives in configuration.
func LoadElementMapFromEnv() *ElementMap {
	entries := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, elementKeyPrefix) {
			continue
		}
		entries[strings.TrimPrefix(key, elementKeyPrefix)] = value
	}

	m := NewElementMap(entries)
	m.logger.WithFields(logrus.Fields{
		"module": "dhis2sync",
		"count":  len(m.entries),
	}).Info("loaded data element mapping")
	return m
}

// Resolve returns the element id for a field type and checklist external
// id. A missing entry is logged as a warning and reported with ok=false;
// it never fails the caller.
func (m *ElementMap) Resolve(fieldType string, checklistID string) (string, bool) {
	id, ok := m.entries[fieldType+"."+checklistID]
	if !ok {
		m.logger.WithFields(logrus.Fields{
			"module":      "dhis2sync",
			"fieldType":   fieldType,
			"checklistId": checklistID,
		}).Warn("no data element mapping configured")
		return "", false
	}
	return id, true
}

// Len reports how many mappings are configured.
func (m *ElementMap) Len() int { return len(m.entries) }
