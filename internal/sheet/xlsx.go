// SPDX-License-Identifier: MIT

package sheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned for a workbook without any worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

// ReadXLSX decodes the first worksheet of an xlsx workbook.
func ReadXLSX(name string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSheet)
	}
	first := sheets[0]

	raw, err := f.GetRows(first, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", first, name, err)
	}

	t := &Table{Name: name, Rows: make([]Row, 0, len(raw))}
	for ri, values := range raw {
		row := make(Row, len(values))
		for ci, v := range values {
			if v == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			typ, err := f.GetCellType(first, axis)
			if err != nil {
				return nil, fmt.Errorf("cell type %s of %s: %w", axis, name, err)
			}
			row[ci] = fromRaw(v, isStringType(typ))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isStringType(t excelize.CellType) bool {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return true
	default:
		return false
	}
}
