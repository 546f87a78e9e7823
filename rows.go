package odbcbind

import (
	"database/sql/driver"
	"io"
	"reflect"
	"time"
)

// Rows implements driver.Rows by fetching into a Record through a Cursor.
type Rows struct {
	cursor  *Cursor
	record  *Record
	descs   []ColumnDesc
	columns []string
	closed  bool
}

// newRows takes over the cursor; closing the rows closes it.
func newRows(cursor *Cursor) *Rows {
	descs := cursor.Columns()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = d.Name
	}
	return &Rows{
		cursor:  cursor,
		record:  NewRecord(descs),
		descs:   descs,
		columns: columns,
	}
}

// Columns returns the column names
func (r *Rows) Columns() []string {
	return r.columns
}

// Close frees the result set and releases the statement reference
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.cursor.Close()
}

// Next fetches the next row into dest
func (r *Rows) Next(dest []driver.Value) error {
	if r.closed {
		return io.EOF
	}

	if err := r.cursor.Next(r.record); err != nil {
		return err
	}
	if !r.record.Valid() {
		return io.EOF
	}

	for i := 0; i < len(dest) && i < r.record.Len(); i++ {
		dest[i] = r.record.Value(i)
	}
	return nil
}

// ColumnTypeScanType returns the Go type suitable for scanning into
func (r *Rows) ColumnTypeScanType(index int) reflect.Type {
	if index < 0 || index >= r.record.Len() {
		return reflect.TypeOf(new(interface{})).Elem()
	}

	switch r.record.Kind(index) {
	case KindBoolean:
		return reflect.TypeOf(false)
	case KindInteger:
		return reflect.TypeOf(int64(0))
	case KindUnsigned:
		return reflect.TypeOf(uint64(0))
	case KindFloat:
		return reflect.TypeOf(float64(0))
	case KindText:
		return reflect.TypeOf("")
	case KindBlob:
		return reflect.TypeOf([]byte{})
	case KindDate, KindDateTime:
		return reflect.TypeOf(time.Time{})
	default:
		return reflect.TypeOf(new(interface{})).Elem()
	}
}

// ColumnTypeDatabaseTypeName returns the database type name
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	if index < 0 || index >= len(r.descs) {
		return ""
	}
	return SQLTypeName(r.descs[index].SQLType)
}

// ColumnTypeLength returns the length of a column
func (r *Rows) ColumnTypeLength(index int) (length int64, ok bool) {
	if index < 0 || index >= len(r.descs) {
		return 0, false
	}
	// Only return length for variable-length types
	switch r.descs[index].SQLType {
	case SQL_CHAR, SQL_VARCHAR, SQL_LONGVARCHAR, SQL_WCHAR, SQL_WVARCHAR, SQL_WLONGVARCHAR,
		SQL_BINARY, SQL_VARBINARY, SQL_LONGVARBINARY:
		return int64(r.descs[index].Size), true
	}
	return 0, false
}

// ColumnTypeNullable returns whether a column is nullable
func (r *Rows) ColumnTypeNullable(index int) (nullable, ok bool) {
	if index < 0 || index >= len(r.descs) {
		return false, false
	}
	switch r.descs[index].Nullable {
	case SQL_NO_NULLS:
		return false, true
	case SQL_NULLABLE:
		return true, true
	default:
		return false, false // Unknown
	}
}

// ColumnTypePrecisionScale returns the precision and scale for NUMERIC/DECIMAL types
func (r *Rows) ColumnTypePrecisionScale(index int) (precision, scale int64, ok bool) {
	if index < 0 || index >= len(r.descs) {
		return 0, 0, false
	}
	switch r.descs[index].SQLType {
	case SQL_NUMERIC, SQL_DECIMAL:
		// Size = precision (total digits), Scale = digits after decimal
		return int64(r.descs[index].Size), int64(r.descs[index].Scale), true
	default:
		return 0, 0, false
	}
}

// Ensure Rows implements the required interfaces
var (
	_ driver.Rows                           = (*Rows)(nil)
	_ driver.RowsColumnTypeScanType         = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeLength           = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
	_ driver.RowsColumnTypePrecisionScale   = (*Rows)(nil)
)
