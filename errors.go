package odbcbind

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error represents an ODBC error with diagnostic information from the driver.
// It implements the error interface and provides SQLState, native error code,
// and a human-readable message.
type Error struct {
	SQLState    string
	NativeError int32
	Message     string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s (native error: %d)", e.SQLState, e.Message, e.NativeError)
}

// Is reports whether target matches this error's SQLState.
// This allows using errors.Is to check for specific ODBC errors.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.SQLState == t.SQLState
	}
	return false
}

// DiagRecord represents a single diagnostic record from ODBC
type DiagRecord struct {
	SQLState    string
	NativeError int32
	Message     string
}

// Errors represents multiple ODBC errors
type Errors []Error

// Error implements the error interface for multiple errors
func (e Errors) Error() string {
	if len(e) == 0 {
		return "unknown ODBC error"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	for i, err := range e {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// GetDiagRecords retrieves all diagnostic records for a handle
func GetDiagRecords(handleType SQLSMALLINT, handle SQLHANDLE) []DiagRecord {
	var records []DiagRecord
	sqlState := make([]byte, 6)
	message := make([]byte, 1024)

	for i := SQLSMALLINT(1); ; i++ {
		nativeError, msgLen, ret := GetDiagRec(handleType, handle, i, sqlState, message)
		if !IsSuccess(ret) {
			break
		}
		if int(msgLen) > len(message) {
			msgLen = SQLSMALLINT(len(message))
		}
		records = append(records, DiagRecord{
			SQLState:    string(sqlState[:5]),
			NativeError: int32(nativeError),
			Message:     string(message[:msgLen]),
		})
	}
	return records
}

// NewError creates an Error from diagnostic records
func NewError(handleType SQLSMALLINT, handle SQLHANDLE) error {
	return errorFromRecords(GetDiagRecords(handleType, handle))
}

func errorFromRecords(records []DiagRecord) error {
	if len(records) == 0 {
		return &Error{
			SQLState: SQLStateGeneralError,
			Message:  "unknown ODBC error",
		}
	}
	if len(records) == 1 {
		return &Error{
			SQLState:    records[0].SQLState,
			NativeError: records[0].NativeError,
			Message:     records[0].Message,
		}
	}
	errs := make(Errors, len(records))
	for i, rec := range records {
		errs[i] = Error{
			SQLState:    rec.SQLState,
			NativeError: rec.NativeError,
			Message:     rec.Message,
		}
	}
	return errs
}

// SQLState constants for the states the binding layer cares about.
const (
	SQLStateDataTruncation     = "01004" // Data truncated
	SQLStateInvalidCursorState = "24000" // Invalid cursor state
	SQLStateGeneralError       = "HY000" // General error
)

// Failure kinds reported by a Cursor. Match them with errors.Is.
var (
	// ErrBindResult means the statement rejected the attached output buffers.
	ErrBindResult = errors.New("bind result buffers failed")

	// ErrFetchRow means SQLFetch reported an error.
	ErrFetchRow = errors.New("could not fetch next row")

	// ErrRefetchColumn means the column-scoped re-fetch after growing a
	// buffer failed.
	ErrRefetchColumn = errors.New("re-fetch after buffer growth failed")

	// ErrUnexpectedStatus means SQLFetch returned a status outside the known set.
	ErrUnexpectedStatus = errors.New("unexpected return value from fetch")

	// ErrColumnIndex means a row adapter bound a column the statement does not have.
	ErrColumnIndex = errors.New("column index out of range")
)

var (
	// ErrTxUnsupported is returned by Begin; statements run in autocommit mode.
	ErrTxUnsupported = errors.New("transactions are not supported")

	// ErrCursorOpen is returned when a Stmt is queried while its previous
	// Rows are still open.
	ErrCursorOpen = errors.New("statement has open rows")
)

// CursorError describes an unrecoverable failure while binding or fetching.
type CursorError struct {
	Op     string    // wire operation, e.g. "SQLFetch"
	Column int       // 0-based column, -1 when the failure is not column scoped
	Return SQLRETURN // status returned by the driver
	Kind   error     // one of the Err* sentinels
	Err    error     // driver diagnostics, may be nil
}

func (e *CursorError) Error() string {
	var sb strings.Builder
	sb.WriteString("odbcbind: ")
	sb.WriteString(e.Op)
	sb.WriteString(": ")
	sb.WriteString(e.Kind.Error())
	if e.Column >= 0 {
		fmt.Fprintf(&sb, " (column %d)", e.Column)
	}
	fmt.Fprintf(&sb, ": error-code: %s", FormatReturnCode(e.Return))
	if e.Err != nil {
		sb.WriteString(", ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the failure kind and the driver diagnostics.
func (e *CursorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsDataTruncation reports whether err indicates data truncation.
func IsDataTruncation(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.SQLState == SQLStateDataTruncation
	}
	return false
}

// FormatReturnCode returns a string representation of an ODBC return code
func FormatReturnCode(ret SQLRETURN) string {
	switch ret {
	case SQL_SUCCESS:
		return "SQL_SUCCESS"
	case SQL_SUCCESS_WITH_INFO:
		return "SQL_SUCCESS_WITH_INFO"
	case SQL_ERROR:
		return "SQL_ERROR"
	case SQL_INVALID_HANDLE:
		return "SQL_INVALID_HANDLE"
	case SQL_NO_DATA:
		return "SQL_NO_DATA"
	case SQL_NEED_DATA:
		return "SQL_NEED_DATA"
	case SQL_STILL_EXECUTING:
		return "SQL_STILL_EXECUTING"
	default:
		return fmt.Sprintf("SQLRETURN(%d)", ret)
	}
}
