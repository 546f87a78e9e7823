package odbcbind

import (
	"context"
	"database/sql/driver"
	"log/slog"
	"sync"
	"time"
)

// Conn implements driver.Conn and represents a connection to a database
type Conn struct {
	env        SQLHENV
	dbc        SQLHDBC
	backend    Backend
	loc        *time.Location
	bufferSize int
	getData    SQLUINTEGER
	log        *slog.Logger
	mu         sync.Mutex
	closed     bool
}

// PrepareHandle allocates and prepares a statement and describes its result
// columns. The returned handle has one owner.
func (c *Conn) PrepareHandle(ctx context.Context, query string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, driver.ErrBadConn
	}

	var stmtHandle SQLHSTMT
	ret := AllocHandle(SQL_HANDLE_STMT, SQLHANDLE(c.dbc), (*SQLHANDLE)(&stmtHandle))
	if !IsSuccess(ret) {
		return nil, NewError(SQL_HANDLE_DBC, SQLHANDLE(c.dbc))
	}

	ret = Prepare(stmtHandle, query)
	if !IsSuccess(ret) {
		err := NewError(SQL_HANDLE_STMT, SQLHANDLE(stmtHandle))
		FreeHandle(SQL_HANDLE_STMT, SQLHANDLE(stmtHandle))
		return nil, err
	}

	// Some drivers can't count parameters before execution
	var numParams SQLSMALLINT
	if ret = NumParams(stmtHandle, &numParams); !IsSuccess(ret) {
		numParams = 0
	}

	descs, err := describeColumns(stmtHandle)
	if err != nil {
		FreeHandle(SQL_HANDLE_STMT, SQLHANDLE(stmtHandle))
		return nil, err
	}

	return NewHandle(c.backend, stmtHandle, int(numParams), len(descs),
		WithHandleLogger(c.log),
		WithInitialBufferSize(c.bufferSize),
		WithColumnDescs(descs),
		WithGetDataExtensions(c.getData),
	), nil
}

// Query prepares and executes query and returns a cursor over its result.
// The cursor owns the statement; closing it frees the statement.
func (c *Conn) Query(ctx context.Context, query string, args ...driver.Value) (*Cursor, error) {
	h, err := c.PrepareHandle(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := h.execute(namedValues(args)); err != nil {
		h.Release()
		return nil, err
	}
	return NewCursor(h, WithTimezone(c.loc)), nil
}

// describeColumns reads the driver's description of every result column.
func describeColumns(stmt SQLHSTMT) ([]ColumnDesc, error) {
	var numCols SQLSMALLINT
	ret := NumResultCols(stmt, &numCols)
	if !IsSuccess(ret) {
		return nil, NewError(SQL_HANDLE_STMT, SQLHANDLE(stmt))
	}

	descs := make([]ColumnDesc, numCols)
	colName := make([]byte, 256)
	for i := range descs {
		nameLen, dataType, colSize, decDigits, nullable, ret := DescribeCol(stmt, SQLUSMALLINT(i+1), colName)
		if !IsSuccess(ret) {
			return nil, NewError(SQL_HANDLE_STMT, SQLHANDLE(stmt))
		}
		if int(nameLen) > len(colName) {
			nameLen = SQLSMALLINT(len(colName))
		}
		descs[i] = ColumnDesc{
			Name:     string(colName[:nameLen]),
			SQLType:  dataType,
			Size:     colSize,
			Scale:    decDigits,
			Nullable: nullable,
		}
	}
	return descs, nil
}

// Prepare prepares a statement for execution
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext prepares a statement with context support
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	h, err := c.PrepareHandle(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Stmt{conn: c, handle: h, query: query}, nil
}

// Close closes the connection
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.dbc != 0 {
		Disconnect(c.dbc)
		FreeHandle(SQL_HANDLE_DBC, SQLHANDLE(c.dbc))
		c.dbc = 0
	}
	if c.env != 0 {
		FreeHandle(SQL_HANDLE_ENV, SQLHANDLE(c.env))
		c.env = 0
	}
	c.log.Debug("disconnected")

	return nil
}

// Begin always fails; statements run in autocommit mode.
func (c *Conn) Begin() (driver.Tx, error) {
	return nil, ErrTxUnsupported
}

// BeginTx always fails; statements run in autocommit mode.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return nil, ErrTxUnsupported
}

// ResetSession is called before a connection is reused
func (c *Conn) ResetSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return driver.ErrBadConn
	}
	return nil
}

// IsValid returns true if the connection is valid
func (c *Conn) IsValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.dbc != 0
}

// Ensure Conn implements the required interfaces
var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
)
