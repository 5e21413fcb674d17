package handler_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"extractos/internal/csvexport"
	"extractos/internal/handler"
)

func exportRequest(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestExportCSV_Success(t *testing.T) {
	h := handler.NewExportHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = exportRequest(t, "/api/v1/export/csv",
		`{"file_name": "Q3 Invoices", "data": [{"vendor": "Acme Corp", "total": 99.5}]}`)

	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Q3_Invoices_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, len(body) >= 3)
	assert.Equal(t, csvexport.BOM, body[:3])

	r := csv.NewReader(strings.NewReader(string(body[3:])))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"total", "vendor"}, rows[0])
	assert.Equal(t, []string{"99.5", "Acme Corp"}, rows[1])
}

func TestExportCSV_MissingData(t *testing.T) {
	h := handler.NewExportHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = exportRequest(t, "/api/v1/export/csv", `{"file_name": "x"}`)

	h.ExportCSV(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportXLSX_Success(t *testing.T) {
	h := handler.NewExportHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = exportRequest(t, "/api/v1/export/xlsx",
		`{"data": [{"vendor": "Acme Corp"}]}`)

	h.ExportXLSX(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "vendor", rows[0][0])
	assert.Equal(t, "Acme Corp", rows[1][0])
}
