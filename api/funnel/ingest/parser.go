package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned before any parsing is attempted when the
// file extension is not one of .csv, .xlsx, .xls.
var ErrUnsupportedFormat = errors.New("unsupported file type")

const maxSheetRows = 100000

// ParseResult is the outcome of reading one upload file into header-keyed rows.
type ParseResult struct {
	Headers    []string            `json:"headers"`
	SampleRows []map[string]string `json:"sample_rows"`
	AllRows    []map[string]string `json:"all_rows"`
	TotalRows  int                 `json:"total_rows"`
	Errors     []string            `json:"errors"`
}

// Parse reads raw CSV/Excel bytes into a sequence of header-keyed row maps.
// The first row is the header; missing trailing cells become empty strings.
// File-level problems (unreadable format, no header, zero data rows) are
// returned as an error; Parse has no side effects.
func Parse(data []byte, filename string, sampleSize int) (*ParseResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rows, err = r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
	case ".xlsx":
		f, openErr := excelize.OpenReader(bytes.NewReader(data))
		if openErr != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", openErr)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		rows, err = f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
	case ".xls":
		wb, openErr := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if openErr != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", openErr)
		}
		rows = wb.ReadAllCells(maxSheetRows)
	default:
		return nil, ErrUnsupportedFormat
	}

	if len(rows) == 0 {
		return nil, errors.New("file has no header row")
	}
	headers := make([]string, len(rows[0]))
	empty := true
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil, errors.New("file has no header row")
	}
	if len(rows) < 2 {
		return nil, errors.New("file has no data rows")
	}

	all := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(row) {
				m[h] = row[j]
			} else {
				m[h] = ""
			}
		}
		all = append(all, m)
	}

	sample := all
	if sampleSize > 0 && len(all) > sampleSize {
		sample = all[:sampleSize]
	}

	return &ParseResult{
		Headers:    headers,
		SampleRows: sample,
		AllRows:    all,
		TotalRows:  len(all),
		Errors:     []string{},
	}, nil
}

// SupportedExt reports whether the filename carries an accepted extension.
// Used to reject files at selection time, before any bytes are parsed.
func SupportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}
