package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"finteach/internal/logger"
	"finteach/internal/models"
	"finteach/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var activityHeaders = []string{"Type", "Detail", "Date"}

// ListActivity pages through the full activity log, newest first.
func (h *LedgerHandler) ListActivity(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	items, total, err := h.Ledger.ListActivity(c.Request.Context(), user.ID, page, size)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]activityResp, 0, len(items))
	for _, a := range items {
		resp = append(resp, toActivityResp(a))
	}
	util.Success(c, util.Response{
		"items": resp,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// ExportCSV downloads the activity log as CSV.
func (h *LedgerHandler) ExportCSV(c *gin.Context) {
	items, ok := h.exportItems(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"activity_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick up the peso sign
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(activityHeaders)
	for _, a := range items {
		_ = writer.Write([]string{a.Type, a.Detail, a.CreatedAt.Format(activityDateLayout)})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		logger.GetGinLogger(c).Warn("write csv export", zap.Error(err))
	}
}

// ExportXLSX downloads the activity log as an Excel workbook.
func (h *LedgerHandler) ExportXLSX(c *gin.Context) {
	items, ok := h.exportItems(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Activity"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		writeServiceError(c, fmt.Errorf("rename sheet: %w", err))
		return
	}

	for i, title := range activityHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
	}
	for idx, a := range items {
		row := idx + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), a.Type)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), a.Detail)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), a.CreatedAt.Format(activityDateLayout))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 60)
	_ = f.SetColWidth(sheetName, "C", "C", 18)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"activity_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		logger.GetGinLogger(c).Warn("write xlsx export", zap.Error(err))
	}
}

func (h *LedgerHandler) exportItems(c *gin.Context) ([]models.Activity, bool) {
	user, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	items, err := h.Ledger.AllActivity(c.Request.Context(), user.ID)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return items, true
}
