package service

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

var historyHeaders = []string{"date", "percent", "status"}

// ExportHistory writes the date-keyed progress history to an xlsx workbook,
// one row per recorded day in date order.
func ExportHistory(db *sql.DB, outPath string, now time.Time) (int, error) {
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return 0, fmt.Errorf("output path is required")
	}
	stats, err := LoadStats(db, now)
	if err != nil {
		return 0, err
	}
	rows := History(stats.DailyProgress, now)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return 0, fmt.Errorf("name history sheet: %w", err)
	}
	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(historySheet, cell, h); err != nil {
			return 0, fmt.Errorf("write header %s: %w", h, err)
		}
	}
	for r, row := range rows {
		values := []any{row.Date, row.Percent, string(row.Status)}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(historySheet, cell, v); err != nil {
				return 0, fmt.Errorf("write history row %s: %w", row.Date, err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}
	if err := f.SaveAs(outPath); err != nil {
		return 0, fmt.Errorf("save history workbook: %w", err)
	}
	return len(rows), nil
}
