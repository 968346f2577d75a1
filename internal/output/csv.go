// Package output serializes the finalized dataset: CSV, XLSX workbook and
// the text summary report.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gcpt/internal/fields"
	"gcpt/internal/models"
)

// WriteCSV writes the finalized records to path in canonical column order.
func WriteCSV(path string, records []*models.PlantRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	writer := csv.NewWriter(file)

	if err := writer.Write(fields.Canonical); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		if err := writer.Write(rec.Row()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return nil
}
