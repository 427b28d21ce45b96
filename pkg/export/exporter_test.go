package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title:    "Mis notas",
		Subtitle: "Generado el 01/10/2025",
		Sections: []Section{
			{
				Heading: "2025-1",
				Headers: []string{"Ramo", "Promedio", "Estado"},
				Rows: [][]string{
					{"Cálculo I", "5.2", "APROBADO"},
					{"Física", "3.1"},
				},
				Footer: []string{"Promedio semestre", "4.2"},
			},
			{
				Heading: "Otros",
				Headers: []string{"Ramo", "Promedio"},
				Rows:    [][]string{{"Inglés", "6.0"}},
			},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 9)
	assert.Equal(t, []string{"2025-1", "", ""}, records[0])
	assert.Equal(t, []string{"Ramo", "Promedio", "Estado"}, records[1])
	assert.Equal(t, []string{"Cálculo I", "5.2", "APROBADO"}, records[2])
	assert.Equal(t, []string{"Física", "3.1", ""}, records[3])
	assert.Equal(t, []string{"Promedio semestre", "4.2", ""}, records[4])
	assert.Equal(t, []string{"", "", ""}, records[5])
	assert.Equal(t, []string{"Otros", "", ""}, records[6])
	assert.Equal(t, []string{"Ramo", "Promedio", ""}, records[7])
	assert.Equal(t, []string{"Inglés", "6.0", ""}, records[8])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{Title: "vacío"})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(sampleDocument())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
	assert.Equal(t, "pdf", exporter.Extension())

	_, err = exporter.Render(Document{})
	assert.Error(t, err)
}
