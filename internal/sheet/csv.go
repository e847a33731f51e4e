// SPDX-License-Identifier: MIT

package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes comma separated text. Input that is not valid UTF-8 is
// assumed to be a Windows-1254 (Turkish) export from a spreadsheet tool.
// Every cell is a string cell.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1254.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s as windows-1254: %w", name, err)
		}
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{Name: name}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		row := make(Row, len(rec))
		for i, v := range rec {
			row[i] = Text(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Records converts a header table into one map per data row, keyed by the
// header text. Duplicate headers keep the last value; cells beyond the header
// width are dropped.
func (t *Table) Records() []map[string]string {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	header := t.Header()
	out := make([]map[string]string, 0, len(t.Rows)-1)
	for _, row := range t.Rows[1:] {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			rec[h] = row.At(i).String()
		}
		out = append(out, rec)
	}
	return out
}
