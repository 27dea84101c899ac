// Package input reads project tables from spreadsheet and CSV files.
package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/manmonths/core/model"
)

// ErrUnsupportedFormat is returned for file extensions without a reader.
var ErrUnsupportedFormat = errors.New("unsupported input format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read loads the table stored at path. The format follows the file
// extension; sheet selects the worksheet of a workbook, empty meaning the
// active one.
func Read(path, sheet string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadFrom(f, filepath.Base(path), sheet)
}

// ReadFrom loads a table from r. name carries the extension used to pick
// the format.
func ReadFrom(r io.Reader, name, sheet string) (*model.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r, sheet)
	case ".csv":
		return readCSV(r, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func readXLSX(r io.Reader, sheet string) (*model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return toTable(sheet, rows), nil
}

func readCSV(r io.Reader, name string) (*model.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toTable(strings.TrimSuffix(name, filepath.Ext(name)), rows), nil
}

// toTable splits the header from the data rows and drops trailing rows
// whose cells are all blank.
func toTable(name string, rows [][]string) *model.Table {
	t := &model.Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	t.Header = rows[0]
	data := rows[1:]
	for len(data) > 0 && blank(data[len(data)-1]) {
		data = data[:len(data)-1]
	}
	t.Rows = data
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
