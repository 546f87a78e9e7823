package odbcbind

import "time"

// Binder attaches caller storage to result columns. Indexes are 0-based.
// Text and blob values are exposed as slices of the column's own buffer and
// stay valid until the next fetch; a NULL value sets the slice to nil and
// the length to zero.
type Binder interface {
	BindBool(index int, value *bool, isNull *bool)
	BindInt64(index int, value *int64, isNull *bool)
	BindUint64(index int, value *uint64, isNull *bool)
	BindFloat64(index int, value *float64, isNull *bool)
	BindText(index int, value *[]byte, length *int)
	BindBlob(index int, value *[]byte, length *int)
	BindDate(index int, value *time.Time, isNull *bool)
	BindDateTime(index int, value *time.Time, isNull *bool)
}

// Finalizer converts wire representations into native values after a fetch.
type Finalizer interface {
	PostBindDate(index int, value *time.Time, isNull *bool)
	PostBindDateTime(index int, value *time.Time, isNull *bool)
}

// Row is implemented by caller-owned row types. A cursor binds a row once
// and reuses the binding while it is handed the same row; rows are compared
// by identity, so implementations must be pointer types.
type Row interface {
	// BindColumns calls one Bind method per column, in column order.
	BindColumns(b Binder)

	// Finalize runs after every successful fetch.
	Finalize(f Finalizer)

	Validate()
	Invalidate()
	Valid() bool
}

// RowState implements the validity part of Row and is meant to be embedded.
type RowState struct {
	valid bool
}

func (s *RowState) Validate()   { s.valid = true }
func (s *RowState) Invalidate() { s.valid = false }
func (s *RowState) Valid() bool { return s.valid }
