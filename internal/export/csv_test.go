package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_EmptyRowsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Columns, records[0])
}

func TestWriteCSV_DataRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "INV-A", records[1][0])
	assert.Equal(t, "150", records[1][5])
	assert.Equal(t, "Widget", records[1][6])
	assert.Equal(t, "", records[2][3])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q1_Invoices_2024", SanitizeFilename("Q1 Invoices / 2024"))
	assert.Equal(t, "batch", SanitizeFilename("__batch__"))
	assert.Equal(t, "", SanitizeFilename("???"))
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("my batch", "xlsx")
	assert.Regexp(t, `^my_batch_\d{4}-\d{2}-\d{2}\.xlsx$`, name)

	// blank base falls back to a sane default
	name = BuildFilename("???", "csv")
	assert.Regexp(t, `^invoices_\d{4}-\d{2}-\d{2}\.csv$`, name)
}
