package odbcbind

import "unsafe"

// Backend is the wire-level surface the binding core drives. Every call
// blocks until the driver returns. Implementations are not required to be
// safe for concurrent use on the same statement.
type Backend interface {
	// BindCol attaches buf/ind to a 1-based result column. A nil buf
	// unbinds the column.
	BindCol(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN

	// Fetch advances to the next row and writes every bound column.
	Fetch(stmt SQLHSTMT) SQLRETURN

	// GetData reads one column of the current row into buf. Successive
	// calls on the same column continue where the previous one stopped.
	GetData(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN

	// BindParameter attaches an input buffer to a 1-based parameter.
	BindParameter(stmt SQLHSTMT, param SQLUSMALLINT, cType, sqlType SQLSMALLINT, size SQLULEN, digits SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN

	Execute(stmt SQLHSTMT) SQLRETURN
	RowCount(stmt SQLHSTMT, count *SQLLEN) SQLRETURN

	FreeStmt(stmt SQLHSTMT, option SQLUSMALLINT) SQLRETURN
	FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN

	// Diagnose collects the diagnostic records of the last call on stmt.
	Diagnose(stmt SQLHSTMT) error
}

type odbcBackend struct{}

// ODBC returns the backend that talks to the system driver manager. The
// library is loaded on first use.
func ODBC() (Backend, error) {
	if err := initODBC(); err != nil {
		return nil, err
	}
	return odbcBackend{}, nil
}

func (odbcBackend) BindCol(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	return BindCol(stmt, col, cType, buf, bufLen, ind)
}

func (odbcBackend) Fetch(stmt SQLHSTMT) SQLRETURN {
	return Fetch(stmt)
}

func (odbcBackend) GetData(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	return GetData(stmt, col, cType, buf, bufLen, ind)
}

func (odbcBackend) BindParameter(stmt SQLHSTMT, param SQLUSMALLINT, cType, sqlType SQLSMALLINT, size SQLULEN, digits SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	return BindParameter(stmt, param, cType, sqlType, size, digits, buf, bufLen, ind)
}

func (odbcBackend) Execute(stmt SQLHSTMT) SQLRETURN {
	return Execute(stmt)
}

func (odbcBackend) RowCount(stmt SQLHSTMT, count *SQLLEN) SQLRETURN {
	return RowCount(stmt, count)
}

func (odbcBackend) FreeStmt(stmt SQLHSTMT, option SQLUSMALLINT) SQLRETURN {
	return FreeStmt(stmt, option)
}

func (odbcBackend) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	return FreeHandle(handleType, handle)
}

func (odbcBackend) Diagnose(stmt SQLHSTMT) error {
	return NewError(SQL_HANDLE_STMT, SQLHANDLE(stmt))
}

var _ Backend = odbcBackend{}
