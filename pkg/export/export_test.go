package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Day", "Start", "Course"},
		Rows: []map[string]string{
			{"Day": "MONDAY", "Start": "09:00", "Course": "Databases"},
			{"Day": "TUESDAY", "Start": "14:00", "Course": "Networks"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Start,Course", lines[0])
	assert.Equal(t, "MONDAY,09:00,Databases", lines[1])
}

func TestCSVExporterMissingColumnRendersEmpty(t *testing.T) {
	data := Dataset{
		Headers: []string{"Day", "Start"},
		Rows:    []map[string]string{{"Day": "FRIDAY"}},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "FRIDAY,")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Weekly Timetable")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
