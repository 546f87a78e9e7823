package odbcbind

import (
	"database/sql/driver"
	"fmt"
	"time"
	"unsafe"

	"github.com/pkg/errors"
)

// paramValue is a driver.Value laid out for SQLBindParameter. buf owns the
// memory ptr points into and must stay reachable until the statement runs.
type paramValue struct {
	buf       any
	ptr       unsafe.Pointer
	bufLen    SQLLEN
	indicator SQLLEN
	cType     SQLSMALLINT
	sqlType   SQLSMALLINT
	size      SQLULEN
	digits    SQLSMALLINT
}

// convertParam lays out one of the driver.Value types for binding.
func convertParam(value driver.Value) (paramValue, error) {
	switch v := value.(type) {
	case nil:
		return paramValue{indicator: SQL_NULL_DATA, cType: SQL_C_CHAR, sqlType: SQL_VARCHAR, size: 1}, nil

	case bool:
		b := new(byte)
		if v {
			*b = 1
		}
		return fixedParam(b, unsafe.Pointer(b), 1, SQL_C_BIT, SQL_BIT, 1), nil

	case int64:
		n := &v
		return fixedParam(n, unsafe.Pointer(n), 8, SQL_C_SBIGINT, SQL_BIGINT, 20), nil

	case float64:
		f := &v
		return fixedParam(f, unsafe.Pointer(f), 8, SQL_C_DOUBLE, SQL_DOUBLE, 15), nil

	case string:
		// NUL terminated; the indicator excludes the terminator
		buf := append([]byte(v), 0)
		return paramValue{
			buf:       buf,
			ptr:       unsafe.Pointer(&buf[0]),
			bufLen:    SQLLEN(len(buf)),
			indicator: SQLLEN(len(v)),
			cType:     SQL_C_CHAR,
			sqlType:   SQL_VARCHAR,
			size:      SQLULEN(max(len(v), 1)),
		}, nil

	case []byte:
		p := paramValue{cType: SQL_C_BINARY, sqlType: SQL_VARBINARY, size: 1}
		if len(v) > 0 {
			p.buf = v
			p.ptr = unsafe.Pointer(&v[0])
			p.bufLen = SQLLEN(len(v))
			p.indicator = SQLLEN(len(v))
			p.size = SQLULEN(len(v))
		}
		return p, nil

	case time.Time:
		ts := encodeTimestamp(v)
		p := fixedParam(ts, unsafe.Pointer(ts), sizeofTimestamp, SQL_C_TYPE_TIMESTAMP, SQL_TYPE_TIMESTAMP, 26)
		p.digits = 6
		return p, nil

	default:
		return paramValue{}, errors.Errorf("unsupported parameter type %T", value)
	}
}

func fixedParam(buf any, ptr unsafe.Pointer, n SQLLEN, cType, sqlType SQLSMALLINT, size SQLULEN) paramValue {
	return paramValue{buf: buf, ptr: ptr, bufLen: n, indicator: n, cType: cType, sqlType: sqlType, size: size}
}

// encodeTimestamp keeps microsecond precision, the same the cursor decodes.
func encodeTimestamp(t time.Time) *SQL_TIMESTAMP_STRUCT {
	return &SQL_TIMESTAMP_STRUCT{
		Year:     SQLSMALLINT(t.Year()),
		Month:    SQLUSMALLINT(t.Month()),
		Day:      SQLUSMALLINT(t.Day()),
		Hour:     SQLUSMALLINT(t.Hour()),
		Minute:   SQLUSMALLINT(t.Minute()),
		Second:   SQLUSMALLINT(t.Second()),
		Fraction: SQLUINTEGER(t.Nanosecond() / 1000 * 1000),
	}
}

var sqlTypeNames = map[SQLSMALLINT]string{
	SQL_CHAR:           "CHAR",
	SQL_VARCHAR:        "VARCHAR",
	SQL_LONGVARCHAR:    "TEXT",
	SQL_WCHAR:          "NCHAR",
	SQL_WVARCHAR:       "NVARCHAR",
	SQL_WLONGVARCHAR:   "NTEXT",
	SQL_DECIMAL:        "DECIMAL",
	SQL_NUMERIC:        "NUMERIC",
	SQL_TINYINT:        "TINYINT",
	SQL_SMALLINT:       "SMALLINT",
	SQL_INTEGER:        "INTEGER",
	SQL_BIGINT:         "BIGINT",
	SQL_REAL:           "REAL",
	SQL_FLOAT:          "FLOAT",
	SQL_DOUBLE:         "DOUBLE",
	SQL_BIT:            "BIT",
	SQL_BOOLEAN:        "BOOLEAN",
	SQL_BINARY:         "BINARY",
	SQL_VARBINARY:      "VARBINARY",
	SQL_LONGVARBINARY:  "BLOB",
	SQL_TYPE_DATE:      "DATE",
	SQL_TYPE_TIME:      "TIME",
	SQL_TYPE_TIMESTAMP: "TIMESTAMP",
	SQL_DATETIME:       "TIMESTAMP",
	SQL_GUID:           "GUID",
}

// SQLTypeName returns the database type name reported for an SQL type.
func SQLTypeName(sqlType SQLSMALLINT) string {
	if name, ok := sqlTypeNames[sqlType]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", sqlType)
}
