package sheet

// Cell holds a single string value. The zero Cell is the absent cell; a write
// replaces the Cell rather than mutating it.
type Cell struct {
	value string
}

func NewCell(value string) Cell {
	return Cell{value: value}
}

func (c Cell) Value() string {
	return c.value
}

// Row is an ordered sequence of Cells, index = column. Rows grow on demand and
// are never reordered.
type Row []Cell

// Document is an ordered sequence of Rows, index = row number.
type Document []Row

// FromRows builds a Document from raw string values, one inner slice per row.
// Rows may be ragged; missing trailing cells read back as absent.
func FromRows(values [][]string) Document {
	doc := make(Document, len(values))
	for r, rowValues := range values {
		row := make(Row, len(rowValues))
		for c, v := range rowValues {
			row[c] = NewCell(v)
		}
		doc[r] = row
	}
	return doc
}

// Rows returns the document as raw string values. The result shares nothing
// with the Document.
func (d Document) Rows() [][]string {
	values := make([][]string, len(d))
	for r, row := range d {
		rowValues := make([]string, len(row))
		for c, cell := range row {
			rowValues[c] = cell.Value()
		}
		values[r] = rowValues
	}
	return values
}

// Value returns the cell value at the given position. An out-of-range position
// is not an error: it means the cell is absent, and absent reads as "".
func (d Document) Value(col, row int) string {
	if col < 0 || row < 0 || row >= len(d) {
		return ""
	}
	r := d[row]
	if col >= len(r) {
		return ""
	}
	return r[col].Value()
}

// Size returns the current column and row extents. The column extent is the
// widest row; rows shorter than that are padded with absent cells on read.
func (d Document) Size() (cols, rows int) {
	for _, row := range d {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols, len(d)
}

// Clone returns a deep copy. Cells are immutable so copying the row slices is
// enough.
func (d Document) Clone() Document {
	clone := make(Document, len(d))
	for r, row := range d {
		clone[r] = append(Row(nil), row...)
	}
	return clone
}

// setGrowing grows the document until (col, row) is a valid index, filling new
// positions with absent cells, then replaces the cell. Growth is monotonic.
func (d *Document) setGrowing(col, row int, value string) {
	for row >= len(*d) {
		*d = append(*d, Row{})
	}
	target := (*d)[row]
	for col >= len(target) {
		target = append(target, Cell{})
	}
	target[col] = NewCell(value)
	(*d)[row] = target
}
