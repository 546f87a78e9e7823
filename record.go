package odbcbind

import (
	"bytes"
	"database/sql/driver"
	"time"
)

// Record is a Row whose shape comes from the driver's column descriptions
// instead of a hand-written type. Text and blob values are copied out of
// the column buffers by Value.
type Record struct {
	RowState

	descs  []ColumnDesc
	kinds  []ColumnKind
	bools  []bool
	ints   []int64
	floats []float64
	raw    [][]byte
	lens   []int
	times  []time.Time
	nulls  []bool
}

// NewRecord allocates storage for one row of the described columns.
func NewRecord(descs []ColumnDesc) *Record {
	n := len(descs)
	r := &Record{
		descs:  descs,
		kinds:  make([]ColumnKind, n),
		bools:  make([]bool, n),
		ints:   make([]int64, n),
		floats: make([]float64, n),
		raw:    make([][]byte, n),
		lens:   make([]int, n),
		times:  make([]time.Time, n),
		nulls:  make([]bool, n),
	}
	for i, d := range descs {
		r.kinds[i] = kindOf(d.SQLType)
	}
	return r
}

// kindOf maps an ODBC SQL type to the kind it is fetched as. Types without
// a native representation are fetched as text and converted by the driver.
func kindOf(sqlType SQLSMALLINT) ColumnKind {
	switch sqlType {
	case SQL_BIT, SQL_BOOLEAN:
		return KindBoolean
	case SQL_TINYINT, SQL_SMALLINT, SQL_INTEGER, SQL_BIGINT:
		return KindInteger
	case SQL_REAL, SQL_FLOAT, SQL_DOUBLE:
		return KindFloat
	case SQL_BINARY, SQL_VARBINARY, SQL_LONGVARBINARY:
		return KindBlob
	case SQL_TYPE_DATE:
		return KindDate
	case SQL_TYPE_TIMESTAMP, SQL_DATETIME:
		return KindDateTime
	default:
		return KindText
	}
}

// Len returns the number of columns.
func (r *Record) Len() int { return len(r.kinds) }

// Kind returns the kind column i is fetched as.
func (r *Record) Kind(i int) ColumnKind { return r.kinds[i] }

// BindColumns implements Row.
func (r *Record) BindColumns(b Binder) {
	for i, kind := range r.kinds {
		switch kind {
		case KindBoolean:
			b.BindBool(i, &r.bools[i], &r.nulls[i])
		case KindInteger:
			b.BindInt64(i, &r.ints[i], &r.nulls[i])
		case KindFloat:
			b.BindFloat64(i, &r.floats[i], &r.nulls[i])
		case KindBlob:
			b.BindBlob(i, &r.raw[i], &r.lens[i])
		case KindDate:
			b.BindDate(i, &r.times[i], &r.nulls[i])
		case KindDateTime:
			b.BindDateTime(i, &r.times[i], &r.nulls[i])
		default:
			b.BindText(i, &r.raw[i], &r.lens[i])
		}
	}
}

// Finalize implements Row.
func (r *Record) Finalize(f Finalizer) {
	for i, kind := range r.kinds {
		switch kind {
		case KindDate:
			f.PostBindDate(i, &r.times[i], &r.nulls[i])
		case KindDateTime:
			f.PostBindDateTime(i, &r.times[i], &r.nulls[i])
		}
	}
}

// Null reports whether column i of the current row is NULL.
func (r *Record) Null(i int) bool {
	if r.kinds[i].variable() {
		return r.raw[i] == nil
	}
	return r.nulls[i]
}

// Value returns column i of the current row as a driver.Value. Text and
// blob values are copies that outlive the next fetch.
func (r *Record) Value(i int) driver.Value {
	if r.Null(i) {
		return nil
	}
	switch r.kinds[i] {
	case KindBoolean:
		return r.bools[i]
	case KindInteger:
		return r.ints[i]
	case KindFloat:
		return r.floats[i]
	case KindBlob:
		return bytes.Clone(r.raw[i][:r.lens[i]])
	case KindDate, KindDateTime:
		return r.times[i]
	default:
		return string(r.raw[i][:r.lens[i]])
	}
}

// Values returns every column of the current row.
func (r *Record) Values() []driver.Value {
	values := make([]driver.Value, len(r.kinds))
	for i := range values {
		values[i] = r.Value(i)
	}
	return values
}

var _ Row = (*Record)(nil)
