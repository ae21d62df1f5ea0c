package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/chartbook/internal/model"
)

// dateFormats are tried in order when coercing a string to a date.
// ISO-8601 forms come first; the rest are the common spreadsheet
// exports seen in real documents.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Normalize converts a dataset into its canonical table form.
//
// If the dataset carries a compressed payload it is expanded first; a
// payload that cannot be decoded fails with ErrCorruptDataset and the
// failure stays contained to this dataset. The declared format is then
// reshaped into rows and columns, and each column is coerced to its
// declared dtype (or to the inferred type when no dtype was declared).
// Cells that are missing or fail coercion become absent markers with a
// recorded warning; a bad cell never aborts normalization.
func Normalize(ds *model.Dataset) (*Table, error) {
	if ds == nil {
		return nil, ErrUnresolvedDataset
	}

	raw := []byte(ds.Data)
	if ds.HasCompressedPayload() {
		expanded, err := DecompressPayload(ds.CompressedData)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", ds.ID, err)
		}
		raw = expanded
	}

	var (
		t   *Table
		err error
	)
	switch ds.Format {
	case model.FormatTable:
		t, err = normalizeTable(ds, raw)
	case model.FormatRecords:
		t, err = normalizeRecords(ds, raw)
	case model.FormatList:
		t, err = normalizeList(ds, raw)
	case model.FormatRecord:
		t, err = normalizeRecord(ds, raw)
	default:
		return nil, fmt.Errorf("dataset %q: %w: unsupported format %q", ds.ID, ErrCorruptDataset, ds.Format)
	}
	if err != nil {
		return nil, err
	}

	t.ID = ds.ID
	applyDTypes(t, ds.DTypes)
	return t, nil
}

// corruptf wraps ErrCorruptDataset with the dataset ID and a reason.
func corruptf(ds *model.Dataset, format string, args ...any) error {
	return fmt.Errorf("dataset %q: %w: %s", ds.ID, ErrCorruptDataset, fmt.Sprintf(format, args...))
}

// normalizeTable reshapes array-of-arrays data. Column names come from
// the declaration; rows narrower than the column list are padded with
// absent markers and wider rows are truncated, both with a warning.
func normalizeTable(ds *model.Dataset, raw []byte) (*Table, error) {
	var rows [][]any
	if err := decodeJSON(raw, &rows); err != nil {
		return nil, corruptf(ds, "table data must be an array of arrays: %v", err)
	}

	t := &Table{Columns: append([]string(nil), ds.Columns...)}
	if len(t.Columns) == 0 {
		widest := 0
		for _, row := range rows {
			if len(row) > widest {
				widest = len(row)
			}
		}
		for i := 0; i < widest; i++ {
			t.Columns = append(t.Columns, "column"+strconv.Itoa(i+1))
		}
		if widest > 0 {
			t.warnf("table dataset declares no columns; synthesized %d column names", widest)
		}
	}

	width := len(t.Columns)
	for i, row := range rows {
		cells := make([]Cell, width)
		for j := range cells {
			if j < len(row) {
				cells[j] = rawCell(row[j])
			}
		}
		switch {
		case len(row) < width:
			t.warnf("row %d has %d cells; padded to %d columns", i, len(row), width)
		case len(row) > width:
			t.warnf("row %d has %d cells; truncated to %d columns", i, len(row), width)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// normalizeRecords reshapes array-of-objects data. Column order is the
// declared list when given, otherwise the union of all keys in order of
// first occurrence. Keys missing from a row yield absent markers.
func normalizeRecords(ds *model.Dataset, raw []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return nil, corruptf(ds, "records data must be an array of objects")
	}

	t := &Table{Columns: append([]string(nil), ds.Columns...)}
	declared := len(t.Columns) > 0
	colIndex := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		colIndex[c] = i
	}

	var rows []map[string]Cell
	for dec.More() {
		keys, cells, err := decodeObject(dec)
		if err != nil {
			return nil, corruptf(ds, "row %d: %v", len(rows), err)
		}
		if !declared {
			for _, k := range keys {
				if _, ok := colIndex[k]; !ok {
					colIndex[k] = len(t.Columns)
					t.Columns = append(t.Columns, k)
				}
			}
		}
		rows = append(rows, cells)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim(']') {
		return nil, corruptf(ds, "records data is not a well-formed array")
	}

	for _, rowMap := range rows {
		cells := make([]Cell, len(t.Columns))
		for j, name := range t.Columns {
			if c, ok := rowMap[name]; ok {
				cells[j] = c
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// normalizeList reshapes a flat array into a single-column table. The
// column is named by the declaration when given, else "value".
func normalizeList(ds *model.Dataset, raw []byte) (*Table, error) {
	var items []any
	if err := decodeJSON(raw, &items); err != nil {
		return nil, corruptf(ds, "list data must be an array: %v", err)
	}

	name := "value"
	if len(ds.Columns) > 0 {
		name = ds.Columns[0]
	}
	t := &Table{Columns: []string{name}}
	for _, item := range items {
		t.Rows = append(t.Rows, []Cell{rawCell(item)})
	}
	return t, nil
}

// normalizeRecord reshapes a single object into a one-row table with
// one column per key, in document order.
func normalizeRecord(ds *model.Dataset, raw []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, corruptf(ds, "record data must be an object")
	}
	keys, cells, err := decodeObjectBody(dec)
	if err != nil {
		return nil, corruptf(ds, "%v", err)
	}

	t := &Table{Columns: append([]string(nil), ds.Columns...)}
	if len(t.Columns) == 0 {
		t.Columns = keys
	}
	row := make([]Cell, len(t.Columns))
	for j, name := range t.Columns {
		if c, ok := cells[name]; ok {
			row[j] = c
		}
	}
	t.Rows = [][]Cell{row}
	return t, nil
}

// decodeObject consumes one complete JSON object from the decoder,
// opening brace included, and returns its keys in document order.
func decodeObject(dec *json.Decoder) ([]string, map[string]Cell, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}
	return decodeObjectBody(dec)
}

// decodeObjectBody reads key-value pairs up to and including the
// closing brace. The decoder must already be positioned after the
// opening brace.
func decodeObjectBody(dec *json.Decoder) ([]string, map[string]Cell, error) {
	var keys []string
	cells := make(map[string]Cell)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("value of %q: %w", key, err)
		}
		if _, seen := cells[key]; !seen {
			keys = append(keys, key)
		}
		cells[key] = rawCell(v)
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, nil, fmt.Errorf("object is not well formed")
	}
	return keys, cells, nil
}

// decodeJSON unmarshals with number preservation enabled so integer
// cells keep full precision until coercion decides their type.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}

// rawCell converts a decoded JSON value into an untyped cell. Nested
// objects and arrays are kept as their compact JSON text; dtype
// coercion decides what, if anything, to make of them.
func rawCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return AbsentCell()
	case string:
		return StringCell(x)
	case bool:
		return BoolCell(x)
	case float64:
		return NumberCell(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return StringCell(x.String())
		}
		return NumberCell(f)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return AbsentCell()
		}
		return StringCell(string(b))
	}
}

// applyDTypes aligns the declared dtype list with the columns and
// coerces every cell. A declared list shorter or longer than the
// column count is tolerated with a warning; the unspecified columns
// fall back to type inference.
func applyDTypes(t *Table, declared []model.DType) {
	width := t.NumCols()
	dtypes := make([]model.DType, width)
	copy(dtypes, declared)
	if n := len(declared); n > 0 && n != width {
		t.warnf("dtypes declares %d entries for %d columns", n, width)
	}

	for col := 0; col < width; col++ {
		dt := dtypes[col]
		if dt == model.DTypeAuto {
			dt = inferColumnType(t, col)
		}
		dtypes[col] = dt
		for r := range t.Rows {
			cell, warn := coerceCell(t.Rows[r][col], dt)
			t.Rows[r][col] = cell
			if warn != "" {
				t.warnf("column %q row %d: %s", t.Columns[col], r, warn)
			}
		}
	}
	t.DTypes = dtypes
}

// inferColumnType picks a concrete dtype for an undeclared column by
// inspecting its non-absent cells: all-numeric wins, then all-boolean,
// then all-date, else string. An empty column is a string column.
func inferColumnType(t *Table, col int) model.DType {
	seen := 0
	allNumber, allBool, allDate := true, true, true
	for r := range t.Rows {
		c := t.Rows[r][col]
		if c.IsAbsent() {
			continue
		}
		seen++
		switch c.Kind() {
		case CellNumber:
			allBool, allDate = false, false
		case CellBool:
			allNumber, allDate = false, false
		case CellTime:
			allNumber, allBool = false, false
		case CellString:
			s, _ := c.Text()
			if _, ok := parseNumber(s); !ok {
				allNumber = false
			}
			if _, ok := parseBool(s); !ok {
				allBool = false
			}
			if _, ok := ParseDate(s); !ok {
				allDate = false
			}
		}
		if !allNumber && !allBool && !allDate {
			break
		}
	}
	switch {
	case seen == 0:
		return model.DTypeString
	case allNumber:
		return model.DTypeNumber
	case allBool:
		return model.DTypeBool
	case allDate:
		return model.DTypeDate
	default:
		return model.DTypeString
	}
}

// coerceCell converts one cell to the column dtype. A cell that cannot
// be represented in the target type becomes the absent marker, with a
// warning describing what was dropped; absence is never an error.
func coerceCell(c Cell, dt model.DType) (Cell, string) {
	if c.IsAbsent() {
		return c, ""
	}
	switch dt {
	case model.DTypeString:
		if c.Kind() == CellString {
			return c, ""
		}
		return StringCell(c.Display()), ""
	case model.DTypeNumber:
		switch c.Kind() {
		case CellNumber:
			return c, ""
		case CellBool:
			b, _ := c.Bool()
			if b {
				return NumberCell(1), ""
			}
			return NumberCell(0), ""
		case CellString:
			s, _ := c.Text()
			if strings.TrimSpace(s) == "" {
				return AbsentCell(), ""
			}
			if f, ok := parseNumber(s); ok {
				return NumberCell(f), ""
			}
			return AbsentCell(), fmt.Sprintf("cannot parse %q as number", s)
		default:
			return AbsentCell(), fmt.Sprintf("cannot coerce %s to number", c.Kind())
		}
	case model.DTypeBool:
		switch c.Kind() {
		case CellBool:
			return c, ""
		case CellNumber:
			n, _ := c.Number()
			return BoolCell(n != 0), ""
		case CellString:
			s, _ := c.Text()
			if b, ok := parseBool(s); ok {
				return BoolCell(b), ""
			}
			return AbsentCell(), fmt.Sprintf("cannot parse %q as bool", s)
		default:
			return AbsentCell(), fmt.Sprintf("cannot coerce %s to bool", c.Kind())
		}
	case model.DTypeDate:
		switch c.Kind() {
		case CellTime:
			return c, ""
		case CellString:
			s, _ := c.Text()
			if strings.TrimSpace(s) == "" {
				return AbsentCell(), ""
			}
			if ts, ok := ParseDate(s); ok {
				return TimeCell(ts), ""
			}
			return AbsentCell(), fmt.Sprintf("cannot parse %q as date", s)
		default:
			return AbsentCell(), fmt.Sprintf("cannot coerce %s to date", c.Kind())
		}
	default:
		return c, ""
	}
}

// parseNumber parses a numeric string, tolerating surrounding space and
// thousands separators ("1,234.5").
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseBool parses a boolean string, accepting strconv forms plus
// yes/no.
func parseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

// ParseDate parses a date string against the supported layouts in
// order, ISO-8601 first. Layouts without a zone parse as UTC. It is
// the same parse the normalizer applies to date-tagged columns, shared
// so template helpers and document metadata agree on what a date is.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
