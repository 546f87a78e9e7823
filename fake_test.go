package odbcbind

import (
	"maps"
	"unsafe"
)

// fakeValue is one cell of a scripted result set.
type fakeValue struct {
	null  bool
	b     bool
	i     int64
	u     uint64
	f     float64
	bytes []byte
	ts    SQL_TIMESTAMP_STRUCT
}

func vNull() fakeValue                        { return fakeValue{null: true} }
func vBool(b bool) fakeValue                  { return fakeValue{b: b} }
func vInt(i int64) fakeValue                  { return fakeValue{i: i} }
func vUint(u uint64) fakeValue                { return fakeValue{u: u} }
func vFloat(f float64) fakeValue              { return fakeValue{f: f} }
func vText(s string) fakeValue                { return fakeValue{bytes: []byte(s)} }
func vBlob(b []byte) fakeValue                { return fakeValue{bytes: b} }
func vTime(ts SQL_TIMESTAMP_STRUCT) fakeValue { return fakeValue{ts: ts} }

type fakeBinding struct {
	cType  SQLSMALLINT
	buf    unsafe.Pointer
	bufLen SQLLEN
	ind    *SQLLEN
}

// fakeBackend plays back scripted rows through the same buffer contract as
// an ODBC driver: text is NUL terminated, truncation is reported with
// SQL_SUCCESS_WITH_INFO and GetData continues where the last call stopped.
type fakeBackend struct {
	rows    [][]fakeValue
	pos     int
	noTotal bool // report SQL_NO_TOTAL instead of the full length

	// getDataExt is the SQL_GETDATA_EXTENSIONS mask GetData enforces
	getDataExt SQLUINTEGER
	// warnOnComplete returns SQL_SUCCESS_WITH_INFO for complete chunks too
	warnOnComplete bool
	lastGetData    SQLUSMALLINT

	bound   map[SQLUSMALLINT]fakeBinding
	offsets map[SQLUSMALLINT]int
	drained map[SQLUSMALLINT]bool

	fetchStatus   map[int]SQLRETURN // by 1-based fetch number
	bindStatus    SQLRETURN
	getDataStatus SQLRETURN
	freeStatus    SQLRETURN
	executeStatus SQLRETURN
	diag          error

	params   map[SQLUSMALLINT]fakeParam
	executed map[SQLUSMALLINT]fakeParam // params seen by the last Execute
	rowCount SQLLEN

	fetches    int
	bindCols   int
	unbinds    int
	closes     int
	getDatas   int
	freeHandle int
	executes   int
	resets     int
}

// fakeParam is what BindParameter saw, read back at Execute.
type fakeParam struct {
	cType   SQLSMALLINT
	sqlType SQLSMALLINT
	buf     unsafe.Pointer
	ind     *SQLLEN
}

func newFakeBackend(rows ...[]fakeValue) *fakeBackend {
	return &fakeBackend{
		rows:        rows,
		pos:         -1,
		bound:       map[SQLUSMALLINT]fakeBinding{},
		offsets:     map[SQLUSMALLINT]int{},
		drained:     map[SQLUSMALLINT]bool{},
		fetchStatus: map[int]SQLRETURN{},
		getDataExt:  SQL_GD_BOUND | SQL_GD_ANY_COLUMN,
		params:      map[SQLUSMALLINT]fakeParam{},
		diag:        &Error{SQLState: SQLStateGeneralError, NativeError: 7, Message: "scripted failure"},
	}
}

func (f *fakeBackend) handle(numColumns int, opts ...HandleOption) *Handle {
	opts = append([]HandleOption{WithGetDataExtensions(f.getDataExt)}, opts...)
	return NewHandle(f, SQLHSTMT(0x51), 0, numColumns, opts...)
}

func (f *fakeBackend) BindCol(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	f.bindCols++
	if f.bindStatus != SQL_SUCCESS {
		return f.bindStatus
	}
	if buf == nil {
		delete(f.bound, col)
		return SQL_SUCCESS
	}
	f.bound[col] = fakeBinding{cType: cType, buf: buf, bufLen: bufLen, ind: ind}
	return SQL_SUCCESS
}

func (f *fakeBackend) Fetch(stmt SQLHSTMT) SQLRETURN {
	f.fetches++
	if ret, ok := f.fetchStatus[f.fetches]; ok {
		return ret
	}
	f.pos++
	if f.pos >= len(f.rows) {
		return SQL_NO_DATA
	}
	clear(f.offsets)
	clear(f.drained)
	f.lastGetData = 0

	ret := SQL_SUCCESS
	for col, b := range f.bound {
		v := f.rows[f.pos][col-1]
		if f.write(b, v) {
			ret = SQL_SUCCESS_WITH_INFO
		}
	}
	return ret
}

// write stores v into a bound buffer and reports whether it was truncated.
func (f *fakeBackend) write(b fakeBinding, v fakeValue) bool {
	if v.null {
		*b.ind = SQL_NULL_DATA
		return false
	}
	switch b.cType {
	case SQL_C_CHAR, SQL_C_BINARY:
		_, truncated := f.copyChunk(b.cType, b.buf, b.bufLen, v.bytes)
		if truncated && f.noTotal {
			*b.ind = SQL_NO_TOTAL
		} else {
			*b.ind = SQLLEN(len(v.bytes))
		}
		return truncated
	case SQL_C_BIT:
		var bit byte
		if v.b {
			bit = 1
		}
		*(*byte)(b.buf) = bit
		*b.ind = 1
	case SQL_C_SBIGINT:
		*(*int64)(b.buf) = v.i
		*b.ind = 8
	case SQL_C_UBIGINT:
		*(*uint64)(b.buf) = v.u
		*b.ind = 8
	case SQL_C_DOUBLE:
		*(*float64)(b.buf) = v.f
		*b.ind = 8
	case SQL_C_TYPE_DATE:
		*(*SQL_DATE_STRUCT)(b.buf) = SQL_DATE_STRUCT{Year: v.ts.Year, Month: v.ts.Month, Day: v.ts.Day}
		*b.ind = sizeofDate
	case SQL_C_TYPE_TIMESTAMP:
		*(*SQL_TIMESTAMP_STRUCT)(b.buf) = v.ts
		*b.ind = sizeofTimestamp
	}
	return false
}

// copyChunk copies as much of data as fits, NUL terminating text.
func (f *fakeBackend) copyChunk(cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, data []byte) (int, bool) {
	term := 0
	if cType == SQL_C_CHAR {
		term = 1
	}
	room := int(bufLen) - term
	if room < 0 {
		room = 0
	}
	n := min(len(data), room)
	if bufLen > 0 {
		dst := unsafe.Slice((*byte)(buf), int(bufLen))
		copy(dst, data[:n])
		if term == 1 {
			dst[n] = 0
		}
	}
	return n, n < len(data)
}

func (f *fakeBackend) GetData(stmt SQLHSTMT, col SQLUSMALLINT, cType SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	f.getDatas++
	if f.getDataStatus != SQL_SUCCESS {
		return f.getDataStatus
	}
	if f.pos < 0 || f.pos >= len(f.rows) {
		return SQL_ERROR
	}
	if ret := f.checkGetData(col); ret != SQL_SUCCESS {
		return ret
	}
	v := f.rows[f.pos][col-1]
	if v.null {
		*ind = SQL_NULL_DATA
		return SQL_SUCCESS
	}
	if f.drained[col] {
		return SQL_NO_DATA
	}

	remaining := v.bytes[f.offsets[col]:]
	n, truncated := f.copyChunk(cType, buf, bufLen, remaining)
	f.offsets[col] += n
	if truncated {
		if f.noTotal {
			*ind = SQL_NO_TOTAL
		} else {
			*ind = SQLLEN(len(remaining))
		}
		return SQL_SUCCESS_WITH_INFO
	}
	*ind = SQLLEN(len(remaining))
	f.drained[col] = true
	if f.warnOnComplete {
		return SQL_SUCCESS_WITH_INFO
	}
	return SQL_SUCCESS
}

// checkGetData applies the SQLGetData restrictions a driver without every
// extension in getDataExt imposes.
func (f *fakeBackend) checkGetData(col SQLUSMALLINT) SQLRETURN {
	var lastBound SQLUSMALLINT
	for c := range f.bound {
		lastBound = max(lastBound, c)
	}
	_, bound := f.bound[col]
	switch {
	case bound && f.getDataExt&SQL_GD_BOUND == 0,
		col <= lastBound && f.getDataExt&SQL_GD_ANY_COLUMN == 0,
		col < f.lastGetData && f.getDataExt&SQL_GD_ANY_ORDER == 0:
		f.diag = &Error{SQLState: "07009", Message: "invalid descriptor index"}
		return SQL_ERROR
	}
	f.lastGetData = col
	return SQL_SUCCESS
}

func (f *fakeBackend) BindParameter(stmt SQLHSTMT, param SQLUSMALLINT, cType, sqlType SQLSMALLINT, size SQLULEN, digits SQLSMALLINT, buf unsafe.Pointer, bufLen SQLLEN, ind *SQLLEN) SQLRETURN {
	f.params[param] = fakeParam{cType: cType, sqlType: sqlType, buf: buf, ind: ind}
	return SQL_SUCCESS
}

func (f *fakeBackend) Execute(stmt SQLHSTMT) SQLRETURN {
	f.executes++
	f.executed = maps.Clone(f.params)
	if f.executeStatus != SQL_SUCCESS {
		return f.executeStatus
	}
	f.pos = -1
	return SQL_SUCCESS
}

func (f *fakeBackend) RowCount(stmt SQLHSTMT, count *SQLLEN) SQLRETURN {
	*count = f.rowCount
	return SQL_SUCCESS
}

func (f *fakeBackend) FreeStmt(stmt SQLHSTMT, option SQLUSMALLINT) SQLRETURN {
	switch option {
	case SQL_UNBIND:
		f.unbinds++
		clear(f.bound)
	case SQL_CLOSE:
		f.closes++
	case SQL_RESET_PARAMS:
		f.resets++
		clear(f.params)
	}
	return SQL_SUCCESS
}

func (f *fakeBackend) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	f.freeHandle++
	if f.freeStatus != SQL_SUCCESS {
		return f.freeStatus
	}
	return SQL_SUCCESS
}

func (f *fakeBackend) Diagnose(stmt SQLHSTMT) error {
	return f.diag
}

var _ Backend = (*fakeBackend)(nil)
