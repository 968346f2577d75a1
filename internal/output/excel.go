package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"gcpt/internal/fields"
	"gcpt/internal/models"
)

// sheetName is the single data sheet of the output workbook.
const sheetName = "Coal Plants"

// WriteXLSX writes the finalized records to an Excel workbook at path.
func WriteXLSX(path string, records []*models.PlantRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	workbook := excelize.NewFile()

	defer func() {
		_ = workbook.Close()
	}()

	index, err := workbook.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	workbook.SetActiveSheet(index)

	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := make([]any, len(fields.Canonical))
	for i, name := range fields.Canonical {
		header[i] = name
	}

	if err := setRow(workbook, 1, header); err != nil {
		return err
	}

	for i, rec := range records {
		row := rec.Row()
		cells := make([]any, len(row))

		for j, value := range row {
			cells[j] = value
		}

		if err := setRow(workbook, i+2, cells); err != nil {
			return err
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func setRow(workbook *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}

	if err := workbook.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}

	return nil
}
