package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Meta:    []Field{{Label: "Employee", Value: "Juan Dela Cruz"}},
		Headers: []string{"Item", "Amount"},
		Rows: []map[string]string{
			{"Item": "Gross Pay", "Amount": "85000.00"},
			{"Item": "Net Pay", "Amount": "70000.50"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Employee,Juan Dela Cruz\n,\nItem,Amount\nGross Pay,85000.00\nNet Pay,70000.50\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Payslip")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	wide := Dataset{Headers: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}
	out, err = NewPDFExporter().Render(wide, "")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
