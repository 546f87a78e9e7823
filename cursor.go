package odbcbind

import (
	"log/slog"
	"time"
	"unsafe"
)

// Cursor fetches rows of a prepared statement into caller-owned Row values.
// A Cursor is not safe for concurrent use, and only one Cursor may fetch
// from a given Handle at a time.
type Cursor struct {
	handle    *Handle
	bound     Row
	loc       *time.Location
	log       *slog.Logger
	bindErr   error
	err       error
	exhausted bool
	closed    bool
}

// CursorOption configures a Cursor
type CursorOption func(*Cursor)

// WithTimezone sets the location decoded dates and timestamps are placed in.
// The default is UTC.
func WithTimezone(loc *time.Location) CursorOption {
	return func(c *Cursor) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithCursorLogger sets the logger that receives fetch diagnostics. By
// default the handle's logger is used.
func WithCursorLogger(l *slog.Logger) CursorOption {
	return func(c *Cursor) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCursor takes over one reference to h; Close releases it. A nil or
// invalid handle yields a cursor whose fetches report no rows.
func NewCursor(h *Handle, opts ...CursorOption) *Cursor {
	c := &Cursor{
		handle: h,
		loc:    time.UTC,
		log:    slog.New(slog.DiscardHandler),
	}
	if h != nil && h.log != nil {
		c.log = h.log
	}
	for _, opt := range opts {
		opt(c)
	}
	if h != nil {
		c.log.Debug("constructing cursor", "handle", h.stmt)
	}
	return c
}

// Invalid reports whether the cursor has no usable statement.
func (c *Cursor) Invalid() bool {
	return c.closed || !c.handle.Valid()
}

// Columns returns the driver's column descriptions, if known.
func (c *Cursor) Columns() []ColumnDesc {
	if c.handle == nil {
		return nil
	}
	return c.handle.Columns()
}

// Next fetches the next row into row. When there are no more rows, or the
// cursor is invalid, row is invalidated and Next returns nil. Errors are
// *CursorError values; after one, every later call invalidates row and
// returns the same error without touching the statement.
func (c *Cursor) Next(row Row) error {
	if c.err != nil {
		row.Invalidate()
		return c.err
	}
	if c.Invalid() || c.exhausted {
		row.Invalidate()
		return nil
	}
	if err := c.next(row); err != nil {
		c.err = err
		row.Invalidate()
		return err
	}
	return nil
}

// next binds row if it is not the bound one and fetches into it.
func (c *Cursor) next(row Row) error {
	if row != c.bound {
		if err := c.bind(row); err != nil {
			return err
		}
	}

	ok, err := c.fetch()
	if err != nil {
		return err
	}
	if !ok {
		c.exhausted = true
		if row.Valid() {
			row.Invalidate()
		}
		return nil
	}

	if !row.Valid() {
		row.Validate()
	}
	row.Finalize(c)
	return nil
}

// Close releases the result set and the cursor's reference to the handle.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	h := c.handle
	valid := h.Valid()
	c.closed = true
	c.bound = nil
	if valid {
		c.log.Debug("freeing result", "handle", h.stmt)
		h.backend.FreeStmt(h.stmt, SQL_CLOSE)
	}
	return h.Release()
}

// bind lets row describe its columns and attaches them to the statement.
func (c *Cursor) bind(row Row) error {
	h := c.handle
	for i := range h.columns {
		h.columns[i].reset(i, KindUnbound)
		h.results[i] = Binding{}
	}
	c.bound = nil
	c.bindErr = nil

	row.BindColumns(c)
	if c.bindErr != nil {
		return c.bindErr
	}
	if err := c.bindResults(); err != nil {
		return err
	}
	c.bound = row
	return nil
}

// bindResults issues the wire-level bind for every described column.
func (c *Cursor) bindResults() error {
	h := c.handle
	c.log.Debug("binding results", "handle", h.stmt)

	if ret := h.backend.FreeStmt(h.stmt, SQL_UNBIND); !IsSuccess(ret) {
		return c.failure("SQLFreeStmt", -1, ret, ErrBindResult)
	}
	for i := range h.results {
		b := &h.results[i]
		if b.Buffer == nil {
			continue
		}
		ret := h.backend.BindCol(h.stmt, SQLUSMALLINT(i+1), b.CType, b.Buffer, b.BufferLen, b.Indicator)
		if !IsSuccess(ret) {
			return c.failure("SQLBindCol", i, ret, ErrBindResult)
		}
	}
	return nil
}

// fetch advances one row. It reports false at the end of the result set.
func (c *Cursor) fetch() (bool, error) {
	h := c.handle
	c.log.Debug("accessing next row", "handle", h.stmt)

	ret := h.backend.Fetch(h.stmt)
	switch ret {
	case SQL_SUCCESS, SQL_SUCCESS_WITH_INFO:
		return true, c.resolve()
	case SQL_NO_DATA:
		return false, nil
	case SQL_ERROR, SQL_INVALID_HANDLE:
		return false, c.failure("SQLFetch", -1, ret, ErrFetchRow)
	default:
		return false, &CursorError{Op: "SQLFetch", Column: -1, Return: ret, Kind: ErrUnexpectedStatus}
	}
}

// resolve completes truncated columns and propagates null flags, lengths
// and text slices to caller storage. Nothing is propagated before every
// truncated column has been re-fetched.
func (c *Cursor) resolve() error {
	h := c.handle
	rebind := false

	for i := range h.columns {
		col := &h.columns[i]
		col.null = col.indicator == SQL_NULL_DATA
		col.truncated = false
		if !col.kind.variable() || col.null {
			continue
		}
		if col.indicator == SQL_NO_TOTAL || !col.fits(int(col.indicator)) {
			// SQLGetData may only read unbound columns past the last bound one
			if !rebind && !h.getDataBound() {
				c.log.Debug("unbinding results for column re-fetch", "handle", h.stmt, "column", col.index)
				if ret := h.backend.FreeStmt(h.stmt, SQL_UNBIND); !IsSuccess(ret) {
					return c.failure("SQLFreeStmt", col.index, ret, ErrRefetchColumn)
				}
			}
			if err := c.refetch(col); err != nil {
				return err
			}
			rebind = true
		}
	}

	for i := range h.columns {
		col := &h.columns[i]
		if col.kind.variable() {
			var n int
			var value []byte
			if !col.null {
				n = int(col.indicator)
				value = col.buf[:n]
			}
			if col.text != nil {
				*col.text = value
			}
			if col.length != nil {
				*col.length = n
			}
		}
		if col.isNull != nil {
			*col.isNull = col.null
		}
	}

	if rebind {
		return c.bindResults()
	}
	return nil
}

// refetch grows col's buffer and reads the column of the current row again.
// When the driver cannot tell the total length the value is read in chunks,
// doubling the buffer each time it fills.
func (c *Cursor) refetch(col *Column) error {
	h := c.handle
	term := col.terminator()
	col.truncated = true

	if col.indicator >= 0 {
		col.grow(int(col.indicator) + term)
	} else {
		col.grow(2 * len(col.buf))
	}
	c.log.Debug("reallocating column buffer", "handle", h.stmt, "column", col.index, "capacity", len(col.buf))

	n := 0
	for {
		if len(col.buf)-n <= term {
			col.grow(2 * len(col.buf))
		}
		avail := len(col.buf) - n
		var ind SQLLEN
		ret := h.backend.GetData(h.stmt, SQLUSMALLINT(col.index+1), col.kind.cType(), unsafe.Pointer(&col.buf[n]), SQLLEN(avail), &ind)

		if ret == SQL_NO_DATA {
			break
		}
		if !IsSuccess(ret) {
			return c.failure("SQLGetData", col.index, ret, ErrRefetchColumn)
		}
		if ind == SQL_NULL_DATA {
			col.null = true
			n = 0
			break
		}
		if ret == SQL_SUCCESS {
			if ind >= 0 && int(ind) < avail-term {
				n += int(ind)
			} else {
				n += avail - term
			}
			break
		}

		// SQL_SUCCESS_WITH_INFO with a chunk that fits is a plain warning
		written := avail - term
		if ind >= 0 && int(ind) <= written {
			n += int(ind)
			break
		}
		n += written
		if ind >= 0 {
			col.grow(n + int(ind) - written + term)
		} else {
			col.grow(2 * len(col.buf))
		}
	}

	col.indicator = SQLLEN(n)
	col.attach(&h.results[col.index])
	c.log.Debug("new column buffer", "handle", h.stmt, "column", col.index, "length", n)
	return nil
}

func (c *Cursor) failure(op string, column int, ret SQLRETURN, kind error) error {
	h := c.handle
	return &CursorError{
		Op:     op,
		Column: column,
		Return: ret,
		Kind:   kind,
		Err:    h.backend.Diagnose(h.stmt),
	}
}

// column resets and returns the descriptor for index, recording an error
// when the statement has no such column.
func (c *Cursor) column(index int, kind ColumnKind) *Column {
	if c.Invalid() {
		return nil
	}
	col := c.handle.Column(index)
	if col == nil {
		if c.bindErr == nil {
			c.bindErr = &CursorError{Op: "bind", Column: index, Return: SQL_ERROR, Kind: ErrColumnIndex}
		}
		return nil
	}
	col.reset(index, kind)
	c.log.Debug("binding result", "kind", kind, "column", index)
	return col
}

func (c *Cursor) bindFixed(index int, kind ColumnKind, value unsafe.Pointer, isNull *bool) {
	col := c.column(index, kind)
	if col == nil {
		return
	}
	col.value = value
	col.isNull = isNull
	col.attach(&c.handle.results[index])
}

func (c *Cursor) bindVariable(index int, kind ColumnKind, value *[]byte, length *int) {
	col := c.column(index, kind)
	if col == nil {
		return
	}
	col.text = value
	col.length = length
	if len(col.buf) == 0 {
		col.grow(c.handle.bufferSize)
	}
	col.attach(&c.handle.results[index])
}

func (c *Cursor) bindTemporal(index int, kind ColumnKind, isNull *bool) {
	col := c.column(index, kind)
	if col == nil {
		return
	}
	col.isNull = isNull
	col.attach(&c.handle.results[index])
}

func (c *Cursor) BindBool(index int, value *bool, isNull *bool) {
	c.bindFixed(index, KindBoolean, unsafe.Pointer(value), isNull)
}

func (c *Cursor) BindInt64(index int, value *int64, isNull *bool) {
	c.bindFixed(index, KindInteger, unsafe.Pointer(value), isNull)
}

func (c *Cursor) BindUint64(index int, value *uint64, isNull *bool) {
	c.bindFixed(index, KindUnsigned, unsafe.Pointer(value), isNull)
}

func (c *Cursor) BindFloat64(index int, value *float64, isNull *bool) {
	c.bindFixed(index, KindFloat, unsafe.Pointer(value), isNull)
}

func (c *Cursor) BindText(index int, value *[]byte, length *int) {
	c.bindVariable(index, KindText, value, length)
}

func (c *Cursor) BindBlob(index int, value *[]byte, length *int) {
	c.bindVariable(index, KindBlob, value, length)
}

// BindDate binds a DATE column. The value is decoded by PostBindDate.
func (c *Cursor) BindDate(index int, value *time.Time, isNull *bool) {
	c.bindTemporal(index, KindDate, isNull)
}

// BindDateTime binds a TIMESTAMP column. The value is decoded by
// PostBindDateTime.
func (c *Cursor) BindDateTime(index int, value *time.Time, isNull *bool) {
	c.bindTemporal(index, KindDateTime, isNull)
}

// PostBindDate decodes a fetched DATE column into value.
func (c *Cursor) PostBindDate(index int, value *time.Time, isNull *bool) {
	col := c.handle.Column(index)
	if col == nil || col.kind != KindDate {
		return
	}
	c.log.Debug("post binding date result", "column", index)
	c.postBind(col, value, isNull, col.date)
}

// PostBindDateTime decodes a fetched TIMESTAMP column into value with
// microsecond precision.
func (c *Cursor) PostBindDateTime(index int, value *time.Time, isNull *bool) {
	col := c.handle.Column(index)
	if col == nil || col.kind != KindDateTime {
		return
	}
	c.log.Debug("post binding date time result", "column", index)
	c.postBind(col, value, isNull, col.timestamp)
}

func (c *Cursor) postBind(col *Column, value *time.Time, isNull *bool, decode func(*time.Location) time.Time) {
	if col.null {
		if isNull != nil {
			*isNull = true
		}
		return
	}
	*value = decode(c.loc)
	if isNull != nil {
		*isNull = false
	}
}

var (
	_ Binder    = (*Cursor)(nil)
	_ Finalizer = (*Cursor)(nil)
)
