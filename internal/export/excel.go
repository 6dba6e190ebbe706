// Package export turns a record set into a downloadable xlsx spreadsheet.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/wicaksana/logbook/internal/model"
	"github.com/wicaksana/logbook/internal/month"
)

// ErrNoRecords reports that there was nothing to export. Callers surface a
// warning instead of producing an empty file.
var ErrNoRecords = errors.New("export: no records")

const (
	// SheetName matches the sheet title the logbook has always exported.
	SheetName = "Logbook Backup"
	// DefaultFilename is used when the caller does not supply one.
	DefaultFilename = "logbook-backup-database.xlsx"
)

var headers = []any{"Bulan", "Tanggal", "Jam Backup", "Backup Ke", "Pelaksana"}

// File builds the workbook in memory: one sheet, one header row, one row per
// record, columns in fixed order.
func File(records []model.BackupRecord) (*excelize.File, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		row := []any{r.Month, month.FormatShortDate(r.Date), r.Time, r.BackupNumber, r.Performer}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// Write builds the workbook and saves it to path, or DefaultFilename when
// path is empty.
func Write(records []model.BackupRecord, path string) error {
	f, err := File(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if path == "" {
		path = DefaultFilename
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
