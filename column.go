package odbcbind

import (
	"time"
	"unsafe"
)

// ColumnKind is the wire representation a column is bound with.
type ColumnKind int

const (
	KindUnbound ColumnKind = iota
	KindBoolean
	KindInteger
	KindUnsigned
	KindFloat
	KindText
	KindBlob
	KindDate
	KindDateTime
)

func (k ColumnKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindUnsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "unbound"
	}
}

// cType is the ODBC C type the kind is bound as.
func (k ColumnKind) cType() SQLSMALLINT {
	switch k {
	case KindBoolean:
		return SQL_C_BIT
	case KindInteger:
		return SQL_C_SBIGINT
	case KindUnsigned:
		return SQL_C_UBIGINT
	case KindFloat:
		return SQL_C_DOUBLE
	case KindText:
		return SQL_C_CHAR
	case KindBlob:
		return SQL_C_BINARY
	case KindDate:
		return SQL_C_TYPE_DATE
	case KindDateTime:
		return SQL_C_TYPE_TIMESTAMP
	default:
		return SQL_UNKNOWN_TYPE
	}
}

// variable reports whether values of this kind have a length only known
// after the fetch.
func (k ColumnKind) variable() bool {
	return k == KindText || k == KindBlob
}

// Binding is the wire-level record of where the driver writes one value.
type Binding struct {
	CType     SQLSMALLINT
	Buffer    unsafe.Pointer
	BufferLen SQLLEN
	Indicator *SQLLEN
}

// defaultBufferSize is the initial capacity of a variable-length column.
const defaultBufferSize = 8

// Column describes how one result column is physically bound. The driver
// writes into indicator and, for variable-length and temporal kinds, into
// buffers owned by the Column; fixed-size kinds are written straight into
// caller storage.
type Column struct {
	index     int
	kind      ColumnKind
	indicator SQLLEN
	null      bool
	truncated bool

	buf      []byte // text/blob, grown monotonically
	temporal SQL_TIMESTAMP_STRUCT

	value  unsafe.Pointer // caller storage for fixed-size kinds
	text   *[]byte
	length *int
	isNull *bool
}

// Index is the 0-based column position.
func (c *Column) Index() int { return c.index }

func (c *Column) Kind() ColumnKind { return c.kind }

// Null reports whether the last fetch returned NULL for the column.
func (c *Column) Null() bool { return c.null }

// Truncated reports whether the last fetch did not fit the buffer that was
// bound at the time. The value exposed to the caller is always complete.
func (c *Column) Truncated() bool { return c.truncated }

// Cap is the current capacity of the column's owned buffer.
func (c *Column) Cap() int { return len(c.buf) }

// reset prepares the descriptor for a new binding. The owned buffer is kept
// so capacity earned on earlier rows is reused.
func (c *Column) reset(index int, kind ColumnKind) {
	c.index = index
	c.kind = kind
	c.indicator = 0
	c.null = false
	c.truncated = false
	c.value = nil
	c.text = nil
	c.length = nil
	c.isNull = nil
	c.temporal = SQL_TIMESTAMP_STRUCT{}
}

// grow makes room for at least n bytes. Existing content is preserved.
func (c *Column) grow(n int) bool {
	if n <= len(c.buf) {
		return false
	}
	buf := make([]byte, n)
	copy(buf, c.buf)
	c.buf = buf
	return true
}

// terminator is the number of bytes the driver appends after the value.
func (c *Column) terminator() int {
	if c.kind == KindText {
		return 1
	}
	return 0
}

// fits reports whether a value of n bytes fits the owned buffer.
func (c *Column) fits(n int) bool {
	return n+c.terminator() <= len(c.buf)
}

// attach points b at the column's storage.
func (c *Column) attach(b *Binding) {
	b.CType = c.kind.cType()
	b.Indicator = &c.indicator
	switch {
	case c.kind.variable():
		b.Buffer = unsafe.Pointer(&c.buf[0])
		b.BufferLen = SQLLEN(len(c.buf))
	case c.kind == KindDate:
		b.Buffer = unsafe.Pointer(&c.temporal)
		b.BufferLen = sizeofDate
	case c.kind == KindDateTime:
		b.Buffer = unsafe.Pointer(&c.temporal)
		b.BufferLen = sizeofTimestamp
	case c.kind == KindBoolean:
		b.Buffer = c.value
		b.BufferLen = 1
	default:
		b.Buffer = c.value
		b.BufferLen = 8
	}
}

// date decodes the packed temporal buffer as a calendar date.
func (c *Column) date(loc *time.Location) time.Time {
	t := c.temporal
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day), 0, 0, 0, 0, loc)
}

// timestamp decodes the packed temporal buffer, truncated to microseconds.
func (c *Column) timestamp(loc *time.Location) time.Time {
	t := c.temporal
	micros := int(t.Fraction) / 1000
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), micros*1000, loc)
}
