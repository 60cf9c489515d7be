package dhis2sync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadElementMapFromEnv(t *testing.T) {
	t.Setenv("dataElement.introduction.CHK1", "E1")
	t.Setenv("dataElement.objective.CHK1", "E2")
	t.Setenv("dataElement.mission.CHK2", " E3 ")
	t.Setenv("UNRELATED_KEY", "ignored")

	m := LoadElementMapFromEnv()

	id, ok := m.Resolve(FieldTypeIntroduction, "CHK1")
	require.True(t, ok)
	require.Equal(t, "E1", id)

	id, ok = m.Resolve(FieldTypeMission, "CHK2")
	require.True(t, ok)
	require.Equal(t, "E3", id)
}

func TestResolveMissingMappingReturnsFalse(t *testing.T) {
	m := NewElementMap(map[string]string{
		FieldTypeIntroduction + ".CHK1": "E1",
	})

	_, ok := m.Resolve(FieldTypeMission, "CHK1")
	require.False(t, ok)
	_, ok = m.Resolve(FieldTypeIntroduction, "CHK9")
	require.False(t, ok)
}

func TestNewElementMapDropsBlankEntries(t *testing.T) {
	m := NewElementMap(map[string]string{
		"introduction.CHK1": "E1",
		"objective.CHK1":    "   ",
		"":                  "E2",
	})
	require.Equal(t, 1, m.Len())
}
