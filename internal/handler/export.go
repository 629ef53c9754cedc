package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Date", "Type", "Currency", "Currency name", "Total"}

// ExportHandler downloads the per-day transaction listing as a spreadsheet.
type ExportHandler struct {
	Reports *service.ReportService
}

func NewExportHandler(reports *service.ReportService) *ExportHandler {
	return &ExportHandler{Reports: reports}
}

func exportFileName(ext string) string {
	return fmt.Sprintf("transactions_%s.%s", time.Now().UTC().Format("20060102"), ext)
}

// ExportCSV GET /api/export/csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Reports.Transactions(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "report", err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFileName("csv")))

	// 写入 UTF-8 BOM，避免 Excel 打开乱码
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, ts := range list {
		_ = writer.Write([]string{
			ts.FormattedDate,
			ts.TransactionType,
			ts.CurrencyCode,
			ts.CurrencyName,
			ts.Total.StringFixed(2),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = c.Error(err)
	}
}

// ExportXLSX GET /api/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.Reports.Transactions(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, "report", err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "could not build spreadsheet")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	for idx, ts := range list {
		row := idx + 2
		total, _ := ts.Total.Float64()
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), ts.FormattedDate)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), ts.TransactionType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), ts.CurrencyCode)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), ts.CurrencyName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), total)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 10)
	_ = f.SetColWidth(sheetName, "C", "C", 10)
	_ = f.SetColWidth(sheetName, "D", "D", 20)
	_ = f.SetColWidth(sheetName, "E", "E", 14)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", exportFileName("xlsx")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
