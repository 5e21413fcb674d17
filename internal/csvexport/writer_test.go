package csvexport_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"extractos/internal/csvexport"
	"extractos/internal/domain"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		{"vendor": "Acme Corp", "total": 1234.5, "paid": true},
		{"vendor": "Globex", "total": 99.0, "due_date": "2026-09-01"},
	}
}

func TestColumns_SortedUnion(t *testing.T) {
	cols := csvexport.Columns(sampleRecords())
	assert.Equal(t, []string{"due_date", "paid", "total", "vendor"}, cols)
}

func TestColumns_Empty(t *testing.T) {
	assert.Empty(t, csvexport.Columns(nil))
}

func TestWriter_WritesHeaderAndRows(t *testing.T) {
	records := sampleRecords()
	cols := csvexport.Columns(records)

	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf, cols)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecords(records))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"due_date", "paid", "total", "vendor"}, rows[0])
	// first record has no due_date; cell stays empty
	assert.Equal(t, []string{"", "true", "1234.5", "Acme Corp"}, rows[1])
	assert.Equal(t, []string{"2026-09-01", "", "99", "Globex"}, rows[2])
}

func TestWriter_NestedValuesSerializedAsJSON(t *testing.T) {
	records := []domain.Record{
		{"seller": map[string]any{"name": "Acme Corp"}, "items": []any{"a", "b"}},
	}
	cols := csvexport.Columns(records)

	var buf bytes.Buffer
	w := csvexport.NewWriter(&buf, cols)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRecords(records))
	w.Flush()

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, rows[1][0])
	assert.Equal(t, `{"name":"Acme Corp"}`, rows[1][1])
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, csvexport.WriteXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"due_date", "paid", "total", "vendor"}, rows[0])
	assert.Equal(t, "Acme Corp", rows[1][3])
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q3_Purchase_Invoices", csvexport.SanitizeFilename("Q3 Purchase / Invoices!"))
	assert.Equal(t, "already-clean_name", csvexport.SanitizeFilename("already-clean_name"))

	long := strings.Repeat("a", 150)
	assert.Len(t, csvexport.SanitizeFilename(long), 100)
}

func TestBuildFilename(t *testing.T) {
	name := csvexport.BuildFilename("My Export", "csv")
	assert.True(t, strings.HasPrefix(name, "My_Export_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	fallback := csvexport.BuildFilename("", "xlsx")
	assert.True(t, strings.HasPrefix(fallback, "export_"))
}
