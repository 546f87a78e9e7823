package odbcbind

import (
	"context"
	"database/sql/driver"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Connector implements driver.Connector and carries the options applied
// to every statement opened through its connections.
type Connector struct {
	dsn     string
	driver  *Driver
	backend Backend

	DefaultTimezone   *time.Location // Location of decoded dates and timestamps (defaults to UTC)
	InitialBufferSize int            // Starting capacity of text/blob columns (defaults to 8)
	Logger            *slog.Logger   // Receives binding diagnostics at Debug level
}

// ConnectorOption configures a Connector
type ConnectorOption func(*Connector)

// WithDefaultTimezone sets the location used when decoding temporal columns
func WithDefaultTimezone(tz *time.Location) ConnectorOption {
	return func(c *Connector) {
		c.DefaultTimezone = tz
	}
}

// WithBufferSize sets the starting capacity of text and blob column buffers
func WithBufferSize(n int) ConnectorOption {
	return func(c *Connector) {
		c.InitialBufferSize = n
	}
}

// WithLogger sets the logger handed to every statement handle and cursor
func WithLogger(l *slog.Logger) ConnectorOption {
	return func(c *Connector) {
		c.Logger = l
	}
}

// NewConnector loads the driver manager and returns a Connector for dsn.
func NewConnector(dsn string, opts ...ConnectorOption) (*Connector, error) {
	backend, err := ODBC()
	if err != nil {
		return nil, err
	}
	c := &Connector{
		dsn:               dsn,
		driver:            &Driver{},
		backend:           backend,
		DefaultTimezone:   time.UTC,
		InitialBufferSize: defaultBufferSize,
		Logger:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect establishes a new connection to the database
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	return c.Open(ctx)
}

// Open establishes a new connection and returns it with its concrete type.
func (c *Connector) Open(ctx context.Context) (*Conn, error) {
	var env SQLHENV
	ret := AllocHandle(SQL_HANDLE_ENV, SQL_NULL_HANDLE, (*SQLHANDLE)(&env))
	if !IsSuccess(ret) {
		return nil, errors.New("failed to allocate ODBC environment handle")
	}

	ret = SetEnvAttr(env, SQL_ATTR_ODBC_VERSION, uintptr(SQL_OV_ODBC3), 0)
	if !IsSuccess(ret) {
		err := NewError(SQL_HANDLE_ENV, SQLHANDLE(env))
		FreeHandle(SQL_HANDLE_ENV, SQLHANDLE(env))
		return nil, err
	}

	var dbc SQLHDBC
	ret = AllocHandle(SQL_HANDLE_DBC, SQLHANDLE(env), (*SQLHANDLE)(&dbc))
	if !IsSuccess(ret) {
		err := NewError(SQL_HANDLE_ENV, SQLHANDLE(env))
		FreeHandle(SQL_HANDLE_ENV, SQLHANDLE(env))
		return nil, err
	}

	outConnStr := make([]byte, 1024)
	_, ret = DriverConnect(dbc, c.dsn, outConnStr)
	if !IsSuccess(ret) {
		err := NewError(SQL_HANDLE_DBC, SQLHANDLE(dbc))
		FreeHandle(SQL_HANDLE_DBC, SQLHANDLE(dbc))
		FreeHandle(SQL_HANDLE_ENV, SQLHANDLE(env))
		return nil, err
	}

	// Drivers that cannot answer support no extensions
	getData, ret := GetInfoUint(dbc, SQL_GETDATA_EXTENSIONS)
	if !IsSuccess(ret) {
		getData = 0
	}

	c.Logger.Debug("connected", "dbc", dbc, "getdata_extensions", getData)
	return &Conn{
		env:        env,
		dbc:        dbc,
		backend:    c.backend,
		loc:        c.DefaultTimezone,
		bufferSize: c.InitialBufferSize,
		getData:    getData,
		log:        c.Logger,
	}, nil
}

// Driver returns the underlying Driver
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// Ensure Connector implements driver.Connector
var _ driver.Connector = (*Connector)(nil)
