// SPDX-License-Identifier: MIT

// Package sheettest builds in-memory workbook fixtures for tests.
package sheettest

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// XLSX renders rows into the first sheet of a new workbook and returns the
// encoded bytes. nil values leave the cell empty.
func XLSX(t testing.TB, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sheet1"
	for ri, row := range rows {
		for ci, v := range row {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
