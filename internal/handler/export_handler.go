package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"extractos/internal/csvexport"
	"extractos/internal/domain"
)

// ExportHandler handles tabular export of extraction results.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportRequest is the JSON body for export endpoints: the data array of a
// previous extraction response plus an optional download name.
type ExportRequest struct {
	FileName string          `json:"file_name"`
	Data     []domain.Record `json:"data" binding:"required"`
}

// ExportCSV handles POST /api/v1/export/csv
// @Summary Export extraction records as CSV
// @Description Convert extraction records to a CSV download. Columns are the union of record keys; nested values are serialized as JSON.
// @Tags export
// @Accept json
// @Produce text/csv
// @Param request body ExportRequest true "Records to export"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} APIResponse "Invalid request body"
// @Router /export/csv [post]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "data field with records is required")
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf, csvexport.Columns(req.Data))
	if err := w.WriteHeader(); err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to write CSV")
		return
	}
	if err := w.WriteRecords(req.Data); err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to write CSV")
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to write CSV")
		return
	}

	filename := csvexport.BuildFilename(req.FileName, "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles POST /api/v1/export/xlsx
// @Summary Export extraction records as a spreadsheet
// @Description Convert extraction records to a single-sheet XLSX download.
// @Tags export
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body ExportRequest true "Records to export"
// @Success 200 {string} string "XLSX file"
// @Failure 400 {object} APIResponse "Invalid request body"
// @Router /export/xlsx [post]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "data field with records is required")
		return
	}

	var buf bytes.Buffer
	if err := csvexport.WriteXLSX(&buf, req.Data); err != nil {
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to write spreadsheet")
		return
	}

	filename := csvexport.BuildFilename(req.FileName, "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
