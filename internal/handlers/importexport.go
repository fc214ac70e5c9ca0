// internal/handlers/importexport.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/rsandford/stockpile/internal/core/domain"
	"github.com/rsandford/stockpile/internal/core/services"
)

// maxImportSize bounds import payloads at 10 MB.
const maxImportSize = 10 << 20

// ImportExportHandler handles collection import and export
type ImportExportHandler struct {
	service *services.InventoryService
	logger  *slog.Logger
}

// NewImportExportHandler creates a new import/export handler
func NewImportExportHandler(service *services.InventoryService, logger *slog.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "importexport")),
	}
}

// Import handles POST /api/v1/import?confirm=true. The body is a JSON
// array of records that replaces the whole collection.
func (h *ImportExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	items, err := h.service.ImportReplace(ctx, payload, confirmed)
	warning, ok := persistWarning(err)
	if !ok {
		h.logger.WarnContext(ctx, "import rejected",
			slog.String("error", err.Error()))
		respondError(w, h.logger, statusForError(err), err.Error())
		return
	}

	h.logger.InfoContext(ctx, "collection imported",
		slog.Int("records", len(items)))
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"imported":  len(items),
		"persisted": warning == "",
		"warning":   warning,
	})
}

// ExportJSON handles GET /api/v1/export. It serves the collection as a
// downloadable JSON document in the canonical backend format.
func (h *ImportExportHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	records := h.service.ExportSnapshot()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to encode export")
		return
	}

	filename := fmt.Sprintf("stock_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportXLSX handles GET /api/v1/export/xlsx
func (h *ImportExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	records := h.service.ExportSnapshot()

	var buffer bytes.Buffer
	if err := writeXLSX(&buffer, records); err != nil {
		h.logger.Error("failed to build xlsx export",
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "Failed to build export")
		return
	}

	filename := fmt.Sprintf("stock_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func writeXLSX(w io.Writer, records []domain.PlainRecord) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Stock")
	if err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	headers := []string{"Name", "Category", "Quantity", "Unit", "Location", "Notes"}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}
	for i := range headers {
		sheet.SetColWidth(i, i, 18)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().Value = rec.Name
		row.AddCell().Value = rec.Category
		row.AddCell().SetFloat(rec.Qty.Float64())
		row.AddCell().Value = rec.Unit
		row.AddCell().Value = rec.Location
		row.AddCell().Value = rec.Notes
	}

	return file.Write(w)
}
