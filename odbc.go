package odbcbind

import (
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

var (
	odbcLib  uintptr
	initOnce sync.Once
	initErr  error
)

// ODBC function pointers - populated by purego
var (
	sqlAllocHandle   func(handleType SQLSMALLINT, inputHandle SQLHANDLE, outputHandle *SQLHANDLE) SQLRETURN
	sqlFreeHandle    func(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN
	sqlSetEnvAttr    func(env SQLHENV, attribute SQLINTEGER, value uintptr, stringLength SQLINTEGER) SQLRETURN
	sqlDriverConnect func(dbc SQLHDBC, hwnd uintptr, inConnStr *byte, inConnStrLen SQLSMALLINT, outConnStr *byte, outConnStrMax SQLSMALLINT, outConnStrLen *SQLSMALLINT, driverCompletion SQLUSMALLINT) SQLRETURN
	sqlDisconnect    func(dbc SQLHDBC) SQLRETURN
	sqlPrepare       func(stmt SQLHSTMT, stmtText *byte, textLength SQLINTEGER) SQLRETURN
	sqlExecute       func(stmt SQLHSTMT) SQLRETURN
	sqlNumResultCols func(stmt SQLHSTMT, columnCount *SQLSMALLINT) SQLRETURN
	sqlNumParams     func(stmt SQLHSTMT, paramCount *SQLSMALLINT) SQLRETURN
	sqlDescribeCol   func(stmt SQLHSTMT, colNum SQLUSMALLINT, colName *byte, bufferLen SQLSMALLINT, nameLen *SQLSMALLINT, dataType *SQLSMALLINT, colSize *SQLULEN, decDigits *SQLSMALLINT, nullable *SQLSMALLINT) SQLRETURN
	sqlBindCol       func(stmt SQLHSTMT, colNum SQLUSMALLINT, targetType SQLSMALLINT, targetValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN
	sqlBindParameter func(stmt SQLHSTMT, paramNum SQLUSMALLINT, ioType SQLSMALLINT, valueType SQLSMALLINT, paramType SQLSMALLINT, colSize SQLULEN, decDigits SQLSMALLINT, paramValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN
	sqlFetch         func(stmt SQLHSTMT) SQLRETURN
	sqlGetData       func(stmt SQLHSTMT, colNum SQLUSMALLINT, targetType SQLSMALLINT, targetValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN
	sqlRowCount      func(stmt SQLHSTMT, rowCount *SQLLEN) SQLRETURN
	sqlGetDiagRec    func(handleType SQLSMALLINT, handle SQLHANDLE, recNum SQLSMALLINT, sqlState *byte, nativeError *SQLINTEGER, msgText *byte, bufferLen SQLSMALLINT, textLen *SQLSMALLINT) SQLRETURN
	sqlFreeStmt      func(stmt SQLHSTMT, option SQLUSMALLINT) SQLRETURN
	sqlGetInfo       func(dbc SQLHDBC, infoType SQLUSMALLINT, infoValue unsafe.Pointer, bufferLen SQLSMALLINT, strLen *SQLSMALLINT) SQLRETURN
)

// getLibraryPath returns the platform-specific ODBC library path.
// The ODBCBIND_LIBRARY_PATH environment variable can override the default path.
func getLibraryPath() string {
	if path := os.Getenv("ODBCBIND_LIBRARY_PATH"); path != "" {
		return path
	}

	switch runtime.GOOS {
	case "windows":
		return "odbc32.dll"
	case "darwin":
		paths := []string{
			"/opt/homebrew/lib/libodbc.2.dylib", // Apple Silicon Homebrew
			"/usr/local/lib/libodbc.2.dylib",    // Intel Homebrew
			"/opt/homebrew/lib/libodbc.dylib",
			"/usr/local/lib/libodbc.dylib",
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		return "libodbc.2.dylib"
	default:
		return "libodbc.so.2"
	}
}

// initODBC loads the driver manager and registers the functions used by
// the binding core and the connection layer.
func initODBC() error {
	initOnce.Do(func() {
		libPath := getLibraryPath()

		odbcLib, initErr = loadODBCLibrary(libPath)
		if initErr != nil {
			initErr = errors.Wrapf(initErr, "failed to load ODBC library %q (set ODBCBIND_LIBRARY_PATH to override)", libPath)
			return
		}

		purego.RegisterLibFunc(&sqlAllocHandle, odbcLib, "SQLAllocHandle")
		purego.RegisterLibFunc(&sqlFreeHandle, odbcLib, "SQLFreeHandle")
		purego.RegisterLibFunc(&sqlSetEnvAttr, odbcLib, "SQLSetEnvAttr")
		purego.RegisterLibFunc(&sqlDisconnect, odbcLib, "SQLDisconnect")

		// ANSI entry points carry an 'A' suffix on Windows only
		if runtime.GOOS == "windows" {
			purego.RegisterLibFunc(&sqlDriverConnect, odbcLib, "SQLDriverConnectA")
			purego.RegisterLibFunc(&sqlPrepare, odbcLib, "SQLPrepareA")
			purego.RegisterLibFunc(&sqlDescribeCol, odbcLib, "SQLDescribeColA")
			purego.RegisterLibFunc(&sqlGetDiagRec, odbcLib, "SQLGetDiagRecA")
			purego.RegisterLibFunc(&sqlGetInfo, odbcLib, "SQLGetInfoA")
		} else {
			purego.RegisterLibFunc(&sqlDriverConnect, odbcLib, "SQLDriverConnect")
			purego.RegisterLibFunc(&sqlPrepare, odbcLib, "SQLPrepare")
			purego.RegisterLibFunc(&sqlDescribeCol, odbcLib, "SQLDescribeCol")
			purego.RegisterLibFunc(&sqlGetDiagRec, odbcLib, "SQLGetDiagRec")
			purego.RegisterLibFunc(&sqlGetInfo, odbcLib, "SQLGetInfo")
		}

		purego.RegisterLibFunc(&sqlExecute, odbcLib, "SQLExecute")
		purego.RegisterLibFunc(&sqlNumResultCols, odbcLib, "SQLNumResultCols")
		purego.RegisterLibFunc(&sqlNumParams, odbcLib, "SQLNumParams")
		purego.RegisterLibFunc(&sqlBindCol, odbcLib, "SQLBindCol")
		purego.RegisterLibFunc(&sqlBindParameter, odbcLib, "SQLBindParameter")
		purego.RegisterLibFunc(&sqlFetch, odbcLib, "SQLFetch")
		purego.RegisterLibFunc(&sqlGetData, odbcLib, "SQLGetData")
		purego.RegisterLibFunc(&sqlRowCount, odbcLib, "SQLRowCount")
		purego.RegisterLibFunc(&sqlFreeStmt, odbcLib, "SQLFreeStmt")
	})
	return initErr
}

// AllocHandle allocates an ODBC handle
func AllocHandle(handleType SQLSMALLINT, inputHandle SQLHANDLE, outputHandle *SQLHANDLE) SQLRETURN {
	return sqlAllocHandle(handleType, inputHandle, outputHandle)
}

// FreeHandle frees an ODBC handle
func FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	return sqlFreeHandle(handleType, handle)
}

// SetEnvAttr sets an environment attribute
func SetEnvAttr(env SQLHENV, attribute SQLINTEGER, value uintptr, stringLength SQLINTEGER) SQLRETURN {
	return sqlSetEnvAttr(env, attribute, value, stringLength)
}

// DriverConnect connects to a data source using a connection string
func DriverConnect(dbc SQLHDBC, inConnStr string, outConnStr []byte) (outLen SQLSMALLINT, ret SQLRETURN) {
	inBytes := append([]byte(inConnStr), 0)
	var outPtr *byte
	var outMax SQLSMALLINT
	if len(outConnStr) > 0 {
		outPtr = &outConnStr[0]
		outMax = SQLSMALLINT(len(outConnStr))
	}
	ret = sqlDriverConnect(dbc, 0, &inBytes[0], SQLSMALLINT(SQL_NTS), outPtr, outMax, &outLen, SQL_DRIVER_NOPROMPT)
	return outLen, ret
}

// Disconnect disconnects from a data source
func Disconnect(dbc SQLHDBC) SQLRETURN {
	return sqlDisconnect(dbc)
}

// Prepare prepares an SQL statement for execution
func Prepare(stmt SQLHSTMT, query string) SQLRETURN {
	queryBytes := append([]byte(query), 0)
	return sqlPrepare(stmt, &queryBytes[0], SQLINTEGER(SQL_NTS))
}

// Execute executes a prepared statement
func Execute(stmt SQLHSTMT) SQLRETURN {
	return sqlExecute(stmt)
}

// NumResultCols returns the number of columns in a result set
func NumResultCols(stmt SQLHSTMT, columnCount *SQLSMALLINT) SQLRETURN {
	return sqlNumResultCols(stmt, columnCount)
}

// NumParams returns the number of parameters in a prepared statement
func NumParams(stmt SQLHSTMT, paramCount *SQLSMALLINT) SQLRETURN {
	return sqlNumParams(stmt, paramCount)
}

// DescribeCol describes a column in a result set
func DescribeCol(stmt SQLHSTMT, colNum SQLUSMALLINT, colName []byte) (nameLen SQLSMALLINT, dataType SQLSMALLINT, colSize SQLULEN, decDigits SQLSMALLINT, nullable SQLSMALLINT, ret SQLRETURN) {
	ret = sqlDescribeCol(stmt, colNum, &colName[0], SQLSMALLINT(len(colName)), &nameLen, &dataType, &colSize, &decDigits, &nullable)
	return
}

// BindCol attaches an output buffer to a result column. The buffer and
// indicator must stay reachable until the column is unbound or the
// statement is freed.
func BindCol(stmt SQLHSTMT, colNum SQLUSMALLINT, targetType SQLSMALLINT, targetValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN {
	return sqlBindCol(stmt, colNum, targetType, targetValue, bufferLen, strLenOrInd)
}

// BindParameter binds a parameter to a statement
func BindParameter(stmt SQLHSTMT, paramNum SQLUSMALLINT, valueType SQLSMALLINT, paramType SQLSMALLINT, colSize SQLULEN, decDigits SQLSMALLINT, paramValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN {
	return sqlBindParameter(stmt, paramNum, SQL_PARAM_INPUT, valueType, paramType, colSize, decDigits, paramValue, bufferLen, strLenOrInd)
}

// Fetch fetches the next row from the result set
func Fetch(stmt SQLHSTMT) SQLRETURN {
	return sqlFetch(stmt)
}

// GetData retrieves data for a single column of the current row
func GetData(stmt SQLHSTMT, colNum SQLUSMALLINT, targetType SQLSMALLINT, targetValue unsafe.Pointer, bufferLen SQLLEN, strLenOrInd *SQLLEN) SQLRETURN {
	return sqlGetData(stmt, colNum, targetType, targetValue, bufferLen, strLenOrInd)
}

// RowCount returns the number of rows affected by an UPDATE, INSERT, or DELETE
func RowCount(stmt SQLHSTMT, rowCount *SQLLEN) SQLRETURN {
	return sqlRowCount(stmt, rowCount)
}

// GetDiagRec retrieves diagnostic records
func GetDiagRec(handleType SQLSMALLINT, handle SQLHANDLE, recNum SQLSMALLINT, sqlState []byte, message []byte) (nativeError SQLINTEGER, msgLen SQLSMALLINT, ret SQLRETURN) {
	ret = sqlGetDiagRec(handleType, handle, recNum, &sqlState[0], &nativeError, &message[0], SQLSMALLINT(len(message)), &msgLen)
	return
}

// FreeStmt frees resources associated with a statement
func FreeStmt(stmt SQLHSTMT, option SQLUSMALLINT) SQLRETURN {
	return sqlFreeStmt(stmt, option)
}

// GetInfoUint reads a 32-bit SQLGetInfo value of a connection
func GetInfoUint(dbc SQLHDBC, infoType SQLUSMALLINT) (SQLUINTEGER, SQLRETURN) {
	var value SQLUINTEGER
	ret := sqlGetInfo(dbc, infoType, unsafe.Pointer(&value), SQLSMALLINT(unsafe.Sizeof(value)), nil)
	return value, ret
}
