package odbcbind

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// ColumnDesc is the driver's description of a result column.
type ColumnDesc struct {
	Name     string
	SQLType  SQLSMALLINT
	Size     SQLULEN
	Scale    SQLSMALLINT
	Nullable SQLSMALLINT
}

// Handle owns a prepared statement together with its parameter and result
// bindings. A Handle may have several owners; the statement is freed when
// the last owner releases it.
type Handle struct {
	stmt    SQLHSTMT
	backend Backend
	log     *slog.Logger

	params     []Binding // inbound
	paramInd   []SQLLEN
	paramBufs  []interface{} // keeps parameter buffers reachable
	results    []Binding     // outbound
	columns    []Column
	descs      []ColumnDesc
	bufferSize int
	getData    SQLUINTEGER // SQL_GETDATA_EXTENSIONS

	refs      atomic.Int32
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// HandleOption configures a Handle
type HandleOption func(*Handle)

// WithHandleLogger sets the logger that receives binding diagnostics.
func WithHandleLogger(l *slog.Logger) HandleOption {
	return func(h *Handle) {
		if l != nil {
			h.log = l
		}
	}
}

// WithInitialBufferSize sets the starting capacity of text and blob columns.
func WithInitialBufferSize(n int) HandleOption {
	return func(h *Handle) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithColumnDescs attaches driver column descriptions to the handle.
func WithColumnDescs(descs []ColumnDesc) HandleOption {
	return func(h *Handle) {
		h.descs = descs
	}
}

// WithGetDataExtensions records the driver's SQL_GETDATA_EXTENSIONS mask.
// Unless it has both SQL_GD_BOUND and SQL_GD_ANY_COLUMN, result columns are
// unbound before a truncated column is read again with SQLGetData.
func WithGetDataExtensions(mask SQLUINTEGER) HandleOption {
	return func(h *Handle) {
		h.getData = mask
	}
}

// NewHandle wraps a prepared statement. The returned handle has one owner.
func NewHandle(backend Backend, stmt SQLHSTMT, numParams, numColumns int, opts ...HandleOption) *Handle {
	h := &Handle{
		stmt:       stmt,
		backend:    backend,
		log:        slog.New(slog.DiscardHandler),
		params:     make([]Binding, numParams),
		paramInd:   make([]SQLLEN, numParams),
		paramBufs:  make([]interface{}, numParams),
		results:    make([]Binding, numColumns),
		columns:    make([]Column, numColumns),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.refs.Store(1)
	h.log.Debug("constructing statement handle", "handle", h.stmt, "params", numParams, "columns", numColumns)
	return h
}

// Valid reports whether the handle refers to a live statement.
func (h *Handle) Valid() bool {
	return h != nil && h.stmt != 0 && h.backend != nil && !h.closed.Load()
}

// NumParams returns the number of inbound bindings.
func (h *Handle) NumParams() int { return len(h.params) }

// NumColumns returns the number of result columns.
func (h *Handle) NumColumns() int { return len(h.columns) }

// Columns returns the driver's column descriptions, if known.
func (h *Handle) Columns() []ColumnDesc {
	if h == nil {
		return nil
	}
	return h.descs
}

// Column returns the binding descriptor of a 0-based column.
func (h *Handle) Column(index int) *Column {
	if h == nil || index < 0 || index >= len(h.columns) {
		return nil
	}
	return &h.columns[index]
}

// getDataBound reports whether SQLGetData may read any column while the
// result columns stay bound.
func (h *Handle) getDataBound() bool {
	const want = SQL_GD_BOUND | SQL_GD_ANY_COLUMN
	return h.getData&want == want
}

// Retain adds an owner and returns h.
func (h *Handle) Retain() *Handle {
	if h != nil {
		h.refs.Add(1)
	}
	return h
}

// Release drops one owner. The statement is freed when the count reaches
// zero; releasing more often than retaining never frees twice.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	if h.refs.Add(-1) > 0 {
		return nil
	}
	return h.Close()
}

// Close frees the statement regardless of remaining owners. It is safe to
// call more than once.
func (h *Handle) Close() error {
	if h == nil {
		return nil
	}
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		if h.stmt == 0 || h.backend == nil {
			return
		}
		h.log.Debug("closing statement handle", "handle", h.stmt)
		ret := h.backend.FreeHandle(SQL_HANDLE_STMT, SQLHANDLE(h.stmt))
		if !IsSuccess(ret) {
			h.closeErr = h.backend.Diagnose(h.stmt)
		}
		h.paramBufs = nil
	})
	return h.closeErr
}
