package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:      "Study resources: ARTIFICIAL INTELLIGENCE",
		Headers:    []string{"ID", "Subject", "Link"},
		LinkColumn: 2,
		Rows: [][]string{
			{"42", "ARTIFICIAL INTELLIGENCE", "https://example.com/ai-m3"},
			{"43", "ARTIFICIAL INTELLIGENCE, PART 2"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleTable())

	require.NoError(t, err)
	assert.Equal(t, "ID,Subject,Link\n42,ARTIFICIAL INTELLIGENCE,https://example.com/ai-m3\n43,\"ARTIFICIAL INTELLIGENCE, PART 2\",\n", string(data))
}

func TestCSVExporterRejectsBadTables(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	require.Error(t, err)

	_, err = NewCSVExporter().Render(Table{Headers: []string{"a"}, Rows: [][]string{{"1", "2"}}})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	data, err := exporter.Render(sampleTable())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.Equal(t, "pdf", exporter.Extension())

	_, err = exporter.Render(Table{})
	require.Error(t, err)
}
