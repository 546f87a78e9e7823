package odbcbind

import (
	"context"
	"database/sql/driver"
	"sync"

	"github.com/pkg/errors"
)

// maxParameters limits the number of parameters to prevent unbounded memory allocation.
const maxParameters = 10000

// Stmt implements driver.Stmt for prepared statements. The statement handle
// is shared with the Rows it returns.
type Stmt struct {
	conn   *Conn
	handle *Handle
	query  string
	rows   *Rows
	mu     sync.Mutex
	closed bool
}

// Handle returns the prepared statement handle.
func (s *Stmt) Handle() *Handle { return s.handle }

// Close drops the statement's reference to the handle. Open rows keep the
// handle alive until they are closed.
func (s *Stmt) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.handle.Release()
}

// NumInput returns the number of placeholder parameters
func (s *Stmt) NumInput() int {
	if n := s.handle.NumParams(); n > 0 {
		return n
	}
	// unknown, database/sql skips the argument count check
	return -1
}

// Exec executes a prepared statement (deprecated, use ExecContext)
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

// ExecContext executes a prepared statement with context
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, driver.ErrBadConn
	}
	if s.rows != nil && !s.rows.closed {
		return nil, ErrCursorOpen
	}

	h := s.handle
	if err := h.execute(args); err != nil {
		return nil, err
	}

	var rowCount SQLLEN
	if ret := h.backend.RowCount(h.stmt, &rowCount); !IsSuccess(ret) {
		rowCount = -1
	}

	h.backend.FreeStmt(h.stmt, SQL_CLOSE)
	h.backend.FreeStmt(h.stmt, SQL_RESET_PARAMS)

	return &Result{rowsAffected: int64(rowCount)}, nil
}

// Query executes a prepared query (deprecated, use QueryContext)
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

// QueryContext executes a prepared query with context
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, driver.ErrBadConn
	}
	if s.rows != nil && !s.rows.closed {
		return nil, ErrCursorOpen
	}

	if err := s.handle.execute(args); err != nil {
		return nil, err
	}

	cursor := NewCursor(s.handle.Retain(), WithTimezone(s.conn.loc))
	s.rows = newRows(cursor)
	return s.rows, nil
}

// execute binds args and runs the prepared statement.
func (h *Handle) execute(args []driver.NamedValue) error {
	if !h.Valid() {
		return driver.ErrBadConn
	}
	if err := h.bindParams(args); err != nil {
		return err
	}

	h.log.Debug("executing statement", "handle", h.stmt, "params", len(args))
	ret := h.backend.Execute(h.stmt)
	if !IsSuccess(ret) && ret != SQL_NO_DATA {
		return h.backend.Diagnose(h.stmt)
	}
	return nil
}

// bindParams fills the handle's inbound bindings from args
func (h *Handle) bindParams(args []driver.NamedValue) error {
	n := 0
	for _, arg := range args {
		n = max(n, arg.Ordinal)
	}
	if n > maxParameters {
		return errors.Errorf("parameter number %d exceeds maximum %d", n, maxParameters)
	}
	// Indicators are bound by address, so they are sized once up front
	if n > len(h.params) {
		h.params = append(h.params, make([]Binding, n-len(h.params))...)
		h.paramInd = append(h.paramInd, make([]SQLLEN, n-len(h.paramInd))...)
		h.paramBufs = append(h.paramBufs, make([]interface{}, n-len(h.paramBufs))...)
	}

	for _, arg := range args {
		if arg.Ordinal <= 0 {
			continue
		}
		if err := h.bindParam(arg.Ordinal-1, arg.Value); err != nil {
			return err
		}
	}
	return nil
}

// bindParam binds a single 0-based parameter
func (h *Handle) bindParam(idx int, value driver.Value) error {
	p, err := convertParam(value)
	if err != nil {
		return errors.Wrapf(err, "parameter %d", idx+1)
	}

	// The driver reads the buffer at execution time
	h.paramBufs[idx] = p.buf
	h.paramInd[idx] = p.indicator
	h.params[idx] = Binding{CType: p.cType, Buffer: p.ptr, BufferLen: p.bufLen, Indicator: &h.paramInd[idx]}

	ret := h.backend.BindParameter(h.stmt, SQLUSMALLINT(idx+1), p.cType, p.sqlType, p.size, p.digits, p.ptr, p.bufLen, &h.paramInd[idx])
	if !IsSuccess(ret) {
		return h.backend.Diagnose(h.stmt)
	}
	return nil
}

func namedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return named
}

// Ensure Stmt implements the required interfaces
var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)
