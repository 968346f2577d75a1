package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"gcpt/internal/logger"
	"gcpt/internal/models"
)

// Direct-file strategy errors.
var (
	ErrNoFileRetrieved = errors.New("no downloadable file could be retrieved")
	ErrEmptyTable      = errors.New("table has no data rows")
	ErrNoUsableSheet   = errors.New("workbook has no usable sheet")
)

// DirectFile downloads a known tabular file (XLSX or CSV) and parses all
// rows in one batch.
type DirectFile struct {
	fetcher *Fetcher
	log     *logger.Logger
	urls    []string
}

// NewDirectFile creates the direct-file strategy over candidate download
// URLs, tried in order.
func NewDirectFile(fetcher *Fetcher, log *logger.Logger, urls []string) *DirectFile {
	return &DirectFile{
		fetcher: fetcher,
		log:     log.With("strategy", "direct-file"),
		urls:    urls,
	}
}

// Name returns the strategy identifier.
func (s *DirectFile) Name() string { return "direct-file" }

// Extract downloads and parses the first candidate file that works. Any
// retrieval or parse failure moves on to the next candidate; exhausting
// them all is a total failure for this strategy only.
func (s *DirectFile) Extract() Result {
	var lastErr error = ErrNoFileRetrieved

	for _, url := range s.urls {
		body, err := s.fetcher.FetchBytes(url)
		if err != nil {
			s.log.Debug("download failed", "url", url, "error", err)

			lastErr = err

			continue
		}

		records, err := parseTable(url, body)
		if err != nil {
			s.log.Debug("parse failed", "url", url, "error", err)

			lastErr = err

			continue
		}

		s.log.Info("parsed downloadable file", "url", url, "records", len(records))

		return Result{Records: records, Status: StatusSuccess}
	}

	return failed(lastErr)
}

// parseTable picks the parser by content: XLSX workbooks are zip archives
// and start with "PK".
func parseTable(url string, body []byte) ([]models.RawRecord, error) {
	if bytes.HasPrefix(body, []byte("PK")) || strings.HasSuffix(strings.ToLower(url), ".xlsx") {
		return parseXLSX(body)
	}

	return parseCSV(body)
}

func parseCSV(body []byte) ([]models.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return rowsToRecords(rows)
}

func parseXLSX(body []byte) ([]models.RawRecord, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	defer func() {
		_ = workbook.Close()
	}()

	// Take the first sheet with a header and data rows; tracker workbooks
	// carry an "About" sheet before the data.
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		records, err := rowsToRecords(rows)
		if err == nil && len(records) > 0 && looksLikePlantData(records[0]) {
			return records, nil
		}
	}

	return nil, ErrNoUsableSheet
}

// rowsToRecords turns header+data rows into raw records keyed by the
// header cells.
func rowsToRecords(rows [][]string) ([]models.RawRecord, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	header := rows[0]
	records := make([]models.RawRecord, 0, len(rows)-1)

	for _, row := range rows[1:] {
		record := make(models.RawRecord, len(header))
		empty := true

		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}

			if strings.TrimSpace(cell) != "" {
				empty = false
			}

			record[header[i]] = cell
		}

		if !empty {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	return records, nil
}
