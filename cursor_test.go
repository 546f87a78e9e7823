package odbcbind

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// pairRow is an (integer, text) row.
type pairRow struct {
	RowState
	id      int64
	idNull  bool
	name    []byte
	nameLen int
}

func (r *pairRow) BindColumns(b Binder) {
	b.BindInt64(0, &r.id, &r.idNull)
	b.BindText(1, &r.name, &r.nameLen)
}

func (r *pairRow) Finalize(f Finalizer) {}

// temporalRow is a (date, timestamp) row.
type temporalRow struct {
	RowState
	day       time.Time
	dayNull   bool
	stamp     time.Time
	stampNull bool
}

func (r *temporalRow) BindColumns(b Binder) {
	b.BindDate(0, &r.day, &r.dayNull)
	b.BindDateTime(1, &r.stamp, &r.stampNull)
}

func (r *temporalRow) Finalize(f Finalizer) {
	f.PostBindDate(0, &r.day, &r.dayNull)
	f.PostBindDateTime(1, &r.stamp, &r.stampNull)
}

// scalarRow covers the fixed-size kinds and a blob.
type scalarRow struct {
	RowState
	ok      bool
	count   uint64
	ratio   float64
	payload []byte
	size    int
	nulls   [3]bool
}

func (r *scalarRow) BindColumns(b Binder) {
	b.BindBool(0, &r.ok, &r.nulls[0])
	b.BindUint64(1, &r.count, &r.nulls[1])
	b.BindFloat64(2, &r.ratio, &r.nulls[2])
	b.BindBlob(3, &r.payload, &r.size)
}

func (r *scalarRow) Finalize(f Finalizer) {}

// strayRow binds a column the statement does not have.
type strayRow struct {
	RowState
	v    int64
	null bool
}

func (r *strayRow) BindColumns(b Binder) { b.BindInt64(5, &r.v, &r.null) }
func (r *strayRow) Finalize(f Finalizer) {}

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.records))
	for i, r := range h.records {
		out[i] = r.Message
	}
	return out
}

// attr returns the value of key on the first record with message msg.
func (h *recordingHandler) attr(msg, key string) (slog.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message != msg {
			continue
		}
		var v slog.Value
		found := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				v, found = a.Value, true
				return false
			}
			return true
		})
		return v, found
	}
	return slog.Value{}, false
}

func TestCursorGrowsTruncatedText(t *testing.T) {
	long := "a much longer string"
	fake := newFakeBackend(
		[]fakeValue{vInt(42), vText("ab")},
		[]fakeValue{vInt(7), vText(long)},
	)
	h := fake.handle(2)
	c := NewCursor(h)
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.True(t, row.Valid())
	require.Equal(t, int64(42), row.id)
	require.False(t, row.idNull)
	require.Equal(t, "ab", string(row.name))
	require.Equal(t, 2, row.nameLen)
	require.Equal(t, 0, fake.getDatas)
	require.Equal(t, defaultBufferSize, h.Column(1).Cap())

	require.NoError(t, c.Next(row))
	require.True(t, row.Valid())
	require.Equal(t, int64(7), row.id)
	require.Equal(t, long, string(row.name))
	require.Equal(t, len(long), row.nameLen)
	require.True(t, h.Column(1).Truncated())
	require.GreaterOrEqual(t, h.Column(1).Cap(), len(long)+1)

	// one column-scoped re-fetch, no row-level re-fetch, one rebind
	require.Equal(t, 1, fake.getDatas)
	require.Equal(t, 2, fake.fetches)
	require.Equal(t, 2, fake.unbinds)
	require.Equal(t, 4, fake.bindCols)

	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
	require.NoError(t, c.Close())
}

func TestCursorKeepsGrownBuffer(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("twenty characters!!!")},
		[]fakeValue{vInt(2), vText("short")},
		[]fakeValue{vInt(3), vText("also fits in twenty")},
	)
	h := fake.handle(2)
	c := NewCursor(h)
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	grown := h.Column(1).Cap()
	require.GreaterOrEqual(t, grown, 21)

	require.NoError(t, c.Next(row))
	require.Equal(t, "short", string(row.name))
	require.Equal(t, grown, h.Column(1).Cap())

	require.NoError(t, c.Next(row))
	require.Equal(t, "also fits in twenty", string(row.name))
	require.False(t, h.Column(1).Truncated())
	require.Equal(t, grown, h.Column(1).Cap())
	require.Equal(t, 1, fake.getDatas)
}

func TestCursorPartialTruncation(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vText("fits"), vText("this one does not fit")},
	)
	h := fake.handle(2)
	c := NewCursor(h)

	var a, b []byte
	var aLen, bLen int
	row := &funcRow{bind: func(bd Binder) {
		bd.BindText(0, &a, &aLen)
		bd.BindText(1, &b, &bLen)
	}}

	require.NoError(t, c.Next(row))
	require.Equal(t, "fits", string(a))
	require.Equal(t, "this one does not fit", string(b))
	require.False(t, h.Column(0).Truncated())
	require.True(t, h.Column(1).Truncated())
	require.Equal(t, 1, fake.getDatas)
	require.Equal(t, 1, fake.fetches)
}

func TestCursorRebindIsIdempotent(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("a")},
		[]fakeValue{vInt(2), vText("b")},
		[]fakeValue{vInt(3), vText("c")},
	)
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.Next(row))
		require.Equal(t, int64(i), row.id)
	}
	require.Equal(t, 1, fake.unbinds)
	require.Equal(t, 2, fake.bindCols)
}

func TestCursorRowSwitchRebinds(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("a")},
		[]fakeValue{vInt(2), vText("b")},
		[]fakeValue{vInt(3), vText("c")},
		[]fakeValue{vInt(4), vText("d")},
	)
	c := NewCursor(fake.handle(2))
	first, second := &pairRow{}, &pairRow{}

	require.NoError(t, c.Next(first))
	require.Equal(t, 1, fake.unbinds)

	require.NoError(t, c.Next(second))
	require.Equal(t, 2, fake.unbinds)
	require.Equal(t, int64(2), second.id)
	require.Equal(t, int64(1), first.id)

	require.NoError(t, c.Next(second))
	require.Equal(t, 2, fake.unbinds)

	require.NoError(t, c.Next(first))
	require.Equal(t, 3, fake.unbinds)
	require.Equal(t, int64(4), first.id)
	require.Equal(t, "d", string(first.name))
}

func TestCursorNullClearsStaleText(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("stale")},
		[]fakeValue{vNull(), vNull()},
		[]fakeValue{vInt(3), vText("")},
	)
	h := fake.handle(2)
	c := NewCursor(h)
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.Equal(t, "stale", string(row.name))

	require.NoError(t, c.Next(row))
	require.True(t, row.Valid())
	require.True(t, row.idNull)
	require.Nil(t, row.name)
	require.Zero(t, row.nameLen)
	require.True(t, h.Column(1).Null())
	require.Equal(t, 0, fake.getDatas)

	require.NoError(t, c.Next(row))
	require.False(t, row.idNull)
	require.NotNil(t, row.name)
	require.Empty(t, row.name)
	require.False(t, h.Column(1).Null())
}

func TestCursorDecodesTemporal(t *testing.T) {
	packed := SQL_TIMESTAMP_STRUCT{Year: 2024, Month: 3, Day: 15, Hour: 13, Minute: 45, Second: 30, Fraction: 123456789}
	fake := newFakeBackend(
		[]fakeValue{vTime(packed), vTime(packed)},
		[]fakeValue{vNull(), vNull()},
	)
	c := NewCursor(fake.handle(2))
	row := &temporalRow{}

	require.NoError(t, c.Next(row))
	require.True(t, row.Valid())
	require.False(t, row.dayNull)
	require.False(t, row.stampNull)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), row.day)
	require.Equal(t, time.Date(2024, 3, 15, 13, 45, 30, 123456000, time.UTC), row.stamp)
	require.Equal(t, 123456, row.stamp.Nanosecond()/1000)

	require.NoError(t, c.Next(row))
	require.True(t, row.dayNull)
	require.True(t, row.stampNull)
	// the previous value is left in place
	require.Equal(t, 2024, row.day.Year())
}

func TestCursorTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	packed := SQL_TIMESTAMP_STRUCT{Year: 2024, Month: 3, Day: 15, Hour: 13, Minute: 45, Second: 30}
	fake := newFakeBackend([]fakeValue{vTime(packed), vTime(packed)})
	c := NewCursor(fake.handle(2), WithTimezone(loc))
	row := &temporalRow{}

	require.NoError(t, c.Next(row))
	require.Equal(t, loc, row.stamp.Location())
	require.Equal(t, 13, row.stamp.Hour())
	require.Equal(t, time.Date(2024, 3, 15, 16, 45, 30, 0, time.UTC), row.stamp.UTC())
}

func TestCursorFixedKindsAndBlob(t *testing.T) {
	blob := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	long := []byte("a blob with more than eight bytes")
	fake := newFakeBackend(
		[]fakeValue{vBool(true), vUint(1 << 63), vFloat(2.5), vBlob(blob)},
		[]fakeValue{vBool(false), vNull(), vNull(), vBlob(long)},
	)
	h := fake.handle(4)
	c := NewCursor(h)
	row := &scalarRow{}

	require.NoError(t, c.Next(row))
	require.True(t, row.ok)
	require.Equal(t, uint64(1<<63), row.count)
	require.Equal(t, 2.5, row.ratio)
	require.Equal(t, blob, row.payload)
	require.Equal(t, 8, row.size)
	// blobs carry no terminator, so eight bytes fit the default buffer
	require.False(t, h.Column(3).Truncated())
	require.Equal(t, 0, fake.getDatas)

	require.NoError(t, c.Next(row))
	require.False(t, row.ok)
	require.Equal(t, [3]bool{false, true, true}, row.nulls)
	require.Equal(t, long, row.payload)
	require.Equal(t, len(long), row.size)
	require.Equal(t, 1, fake.getDatas)
}

func TestCursorChunkedReadWithoutTotal(t *testing.T) {
	long := strings.Repeat("0123456789", 10)
	fake := newFakeBackend([]fakeValue{vInt(1), vText(long)})
	fake.noTotal = true
	h := fake.handle(2)
	c := NewCursor(h)
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.Equal(t, long, string(row.name))
	require.Equal(t, len(long), row.nameLen)
	require.Greater(t, fake.getDatas, 1)
	require.GreaterOrEqual(t, h.Column(1).Cap(), len(long)+1)
}

func TestCursorChunkedReadWithWarnings(t *testing.T) {
	long := strings.Repeat("0123456789", 10)
	fake := newFakeBackend([]fakeValue{vInt(1), vText(long)})
	fake.noTotal = true
	fake.warnOnComplete = true
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.Equal(t, long, string(row.name))
	require.Equal(t, len(long), row.nameLen)
}

func TestCursorCompleteChunkWithWarning(t *testing.T) {
	long := "a much longer string"
	fake := newFakeBackend([]fakeValue{vInt(1), vText(long)})
	fake.warnOnComplete = true
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.Equal(t, long, string(row.name))
	require.Equal(t, 1, fake.getDatas)
}

func TestCursorGetDataExtensions(t *testing.T) {
	long := "a much longer string"
	full := SQL_GD_BOUND | SQL_GD_ANY_COLUMN

	tests := []struct {
		name       string
		driver     SQLUINTEGER // what the driver allows
		reported   SQLUINTEGER // what the handle was told
		wantUnbind int
		wantErr    bool
	}{
		{name: "bound reads allowed", driver: full, reported: full, wantUnbind: 2},
		{name: "no extensions", driver: 0, reported: 0, wantUnbind: 3},
		{name: "any column only", driver: SQL_GD_ANY_COLUMN, reported: SQL_GD_ANY_COLUMN, wantUnbind: 3},
		{name: "bound only", driver: SQL_GD_BOUND, reported: SQL_GD_BOUND, wantUnbind: 3},
		{name: "capability overstated", driver: 0, reported: full, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBackend(
				[]fakeValue{vInt(42), vText("ab")},
				[]fakeValue{vInt(7), vText(long)},
				[]fakeValue{vInt(9), vText("ok")},
			)
			fake.getDataExt = tt.driver
			c := NewCursor(fake.handle(2, WithGetDataExtensions(tt.reported)))
			row := &pairRow{}

			require.NoError(t, c.Next(row))
			err := c.Next(row)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrRefetchColumn)
				require.ErrorIs(t, err, &Error{SQLState: "07009"})
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(7), row.id)
			require.Equal(t, long, string(row.name))
			require.Equal(t, tt.wantUnbind, fake.unbinds)
			require.Equal(t, 1, fake.getDatas)

			// the rebind after the re-fetch restores every column
			require.NoError(t, c.Next(row))
			require.Equal(t, int64(9), row.id)
			require.Equal(t, "ok", string(row.name))
			require.NoError(t, c.Close())
		})
	}
}

func TestCursorExhaustionIsSticky(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("only")})
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.True(t, row.Valid())

	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
	fetches := fake.fetches

	for range 3 {
		require.NoError(t, c.Next(row))
		require.False(t, row.Valid())
	}
	require.Equal(t, fetches, fake.fetches)

	other := &pairRow{}
	other.Validate()
	require.NoError(t, c.Next(other))
	require.False(t, other.Valid())
}

func TestCursorEmptyResult(t *testing.T) {
	fake := newFakeBackend()
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
	require.Equal(t, 1, fake.fetches)
}

func TestCursorWithoutHandle(t *testing.T) {
	c := NewCursor(nil)
	require.True(t, c.Invalid())
	require.Nil(t, c.Columns())

	row := &pairRow{}
	row.Validate()
	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
	require.NoError(t, c.Close())
}

func TestCursorWithUnpreparedHandle(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	h := NewHandle(fake, 0, 0, 2)
	c := NewCursor(h)
	require.True(t, c.Invalid())

	row := &pairRow{}
	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
	require.Zero(t, fake.fetches)
	require.Zero(t, fake.bindCols)
	require.NoError(t, c.Close())
	require.Zero(t, fake.freeHandle)
}

func TestCursorBindFailure(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	fake.bindStatus = SQL_ERROR
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	err := c.Next(row)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBindResult)
	require.ErrorIs(t, err, &Error{SQLState: SQLStateGeneralError})

	var cerr *CursorError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "SQLBindCol", cerr.Op)
	require.Equal(t, 0, cerr.Column)
	require.Equal(t, SQL_ERROR, cerr.Return)
	require.Contains(t, err.Error(), "SQL_ERROR")
	require.Contains(t, err.Error(), "scripted failure")
	require.False(t, row.Valid())
	require.Zero(t, fake.fetches)
}

func TestCursorFetchFailure(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	fake.fetchStatus[1] = SQL_ERROR
	c := NewCursor(fake.handle(2))

	err := c.Next(&pairRow{})
	require.ErrorIs(t, err, ErrFetchRow)
	require.NotErrorIs(t, err, ErrBindResult)

	var cerr *CursorError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, -1, cerr.Column)
	require.NotContains(t, err.Error(), "(column")
}

func TestCursorInvalidHandleStatus(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	fake.fetchStatus[1] = SQL_INVALID_HANDLE
	c := NewCursor(fake.handle(2))

	err := c.Next(&pairRow{})
	require.ErrorIs(t, err, ErrFetchRow)
	require.Contains(t, err.Error(), "SQL_INVALID_HANDLE")
}

func TestCursorUnexpectedStatus(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	fake.fetchStatus[1] = SQL_NEED_DATA
	c := NewCursor(fake.handle(2))

	err := c.Next(&pairRow{})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "SQL_NEED_DATA")
}

func TestCursorRefetchFailure(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("longer than eight")})
	fake.getDataStatus = SQL_ERROR
	c := NewCursor(fake.handle(2))
	row := &pairRow{name: []byte("previous"), nameLen: 8}

	err := c.Next(row)
	require.ErrorIs(t, err, ErrRefetchColumn)
	require.Contains(t, err.Error(), "re-fetch after buffer growth failed")

	var cerr *CursorError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "SQLGetData", cerr.Op)
	require.Equal(t, 1, cerr.Column)

	// nothing is propagated from a partially resolved row
	require.Equal(t, "previous", string(row.name))
	require.Equal(t, 8, row.nameLen)
}

func TestCursorColumnIndexOutOfRange(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	c := NewCursor(fake.handle(2))

	err := c.Next(&strayRow{})
	require.ErrorIs(t, err, ErrColumnIndex)
	require.Zero(t, fake.bindCols)
	require.Zero(t, fake.fetches)

	// the failure sticks, even for a well-formed row
	row := &pairRow{}
	row.Validate()
	require.ErrorIs(t, c.Next(row), ErrColumnIndex)
	require.False(t, row.Valid())
	require.Zero(t, fake.bindCols)
}

func TestCursorFailureIsSticky(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("x")},
		[]fakeValue{vInt(2), vText("y")},
	)
	fake.fetchStatus[1] = SQL_ERROR
	c := NewCursor(fake.handle(2))
	row := &pairRow{}

	err := c.Next(row)
	require.ErrorIs(t, err, ErrFetchRow)
	require.False(t, row.Valid())

	for range 2 {
		row.Validate()
		again := c.Next(row)
		require.Equal(t, err, again)
		require.False(t, row.Valid())
	}
	require.Equal(t, 1, fake.fetches)

	require.NoError(t, c.Close())
	require.Equal(t, 1, fake.closes)
}

func TestCursorCloseReleasesHandleOnce(t *testing.T) {
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	h := fake.handle(2)
	c := NewCursor(h)

	require.NoError(t, c.Next(&pairRow{}))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.Equal(t, 1, fake.closes)
	require.Equal(t, 1, fake.freeHandle)
	require.False(t, h.Valid())
	require.True(t, c.Invalid())

	row := &pairRow{}
	require.NoError(t, c.Next(row))
	require.False(t, row.Valid())
}

func TestCursorSharedHandle(t *testing.T) {
	fake := newFakeBackend(
		[]fakeValue{vInt(1), vText("x")},
		[]fakeValue{vInt(2), vText("y")},
	)
	h := fake.handle(2)

	first := NewCursor(h.Retain())
	row := &pairRow{}
	require.NoError(t, first.Next(row))
	require.NoError(t, first.Close())
	require.Zero(t, fake.freeHandle)
	require.True(t, h.Valid())

	second := NewCursor(h)
	require.NoError(t, second.Next(row))
	require.Equal(t, int64(2), row.id)
	require.NoError(t, second.Close())
	require.Equal(t, 1, fake.freeHandle)

	require.NoError(t, h.Release())
	require.Equal(t, 1, fake.freeHandle)
}

func TestCursorLogsDiagnostics(t *testing.T) {
	rec := &recordingHandler{}
	fake := newFakeBackend([]fakeValue{vInt(1), vText("does not fit in eight")})
	h := fake.handle(2, WithHandleLogger(slog.New(rec)))
	c := NewCursor(h)

	require.NoError(t, c.Next(&pairRow{}))
	require.NoError(t, c.Close())

	msgs := rec.messages()
	for _, want := range []string{
		"constructing statement handle",
		"binding result",
		"binding results",
		"accessing next row",
		"reallocating column buffer",
		"new column buffer",
		"freeing result",
		"closing statement handle",
	} {
		require.Contains(t, msgs, want)
	}

	capacity, ok := rec.attr("reallocating column buffer", "capacity")
	require.True(t, ok)
	require.GreaterOrEqual(t, capacity.Int64(), int64(len("does not fit in eight")+1))

	column, ok := rec.attr("new column buffer", "column")
	require.True(t, ok)
	require.Equal(t, int64(1), column.Int64())
}

func TestCursorLoggerOverride(t *testing.T) {
	handleLog, cursorLog := &recordingHandler{}, &recordingHandler{}
	fake := newFakeBackend([]fakeValue{vInt(1), vText("x")})
	h := fake.handle(2, WithHandleLogger(slog.New(handleLog)))
	c := NewCursor(h, WithCursorLogger(slog.New(cursorLog)))

	require.NoError(t, c.Next(&pairRow{}))
	require.Contains(t, cursorLog.messages(), "accessing next row")
	require.NotContains(t, handleLog.messages(), "accessing next row")
}

// funcRow adapts a closure to the Row contract.
type funcRow struct {
	RowState
	bind     func(Binder)
	finalize func(Finalizer)
}

func (r *funcRow) BindColumns(b Binder) { r.bind(b) }

func (r *funcRow) Finalize(f Finalizer) {
	if r.finalize != nil {
		r.finalize(f)
	}
}
