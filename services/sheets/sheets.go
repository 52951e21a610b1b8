// Package sheets exchanges collections with xlsx workbooks.
// The first sheet holds one record per row under a header row of field names or labels.
package sheets

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-records/core/record"
)

// ErrNoSheet is returned when a workbook has no sheet to read from.
var ErrNoSheet = errors.New("workbook has no sheet")

// Export writes recs as a workbook whose only sheet is named after the schema title.
func Export(w io.Writer, schema record.Schema, recs []record.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := schema.Title
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := []interface{}{record.IDField}
	for _, name := range schema.FieldNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, rec := range recs {
		row := make([]interface{}, 0, len(header))
		row = append(row, int64(rec.ID))
		for _, name := range schema.FieldNames() {
			row = append(row, rec.Values[name])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// Read returns the values of every non-blank row of the first sheet.
// Values are kept as text; the id column and empty cells are ignored.
func Read(r io.Reader, schema record.Schema) ([]record.Values, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns, err := mapHeader(schema, rows[0])
	if err != nil {
		return nil, err
	}

	var out []record.Values
	for _, row := range rows[1:] {
		vals := make(record.Values)
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				vals[columns[i]] = cell
			}
		}
		if len(vals) > 0 {
			out = append(out, vals)
		}
	}
	return out, nil
}

// mapHeader resolves each header cell to a field name; "" marks an ignored column.
func mapHeader(schema record.Schema, header []string) ([]string, error) {
	columns := make([]string, len(header))
	for i, title := range header {
		title = strings.TrimSpace(title)
		if title == "" || strings.EqualFold(title, record.IDField) {
			continue
		}
		name, ok := lookupField(schema, title)
		if !ok {
			return nil, errors.Wrapf(record.ErrUnknownField, "column %q", title)
		}
		columns[i] = name
	}
	return columns, nil
}

func lookupField(schema record.Schema, title string) (string, bool) {
	for _, f := range schema.Fields {
		if strings.EqualFold(f.Name, title) || strings.EqualFold(f.Label, title) {
			return f.Name, true
		}
	}
	return "", false
}

// Filename suggests a workbook name for collection.
func Filename(collection string) string {
	return fmt.Sprintf("%s.xlsx", collection)
}
