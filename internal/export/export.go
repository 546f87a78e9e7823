package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Column is a result column and the kind its values were fetched as, e.g.
// "integer", "text" or "datetime".
type Column struct {
	Name string
	Type string
}

// ResultSet is a fully fetched result.
type ResultSet struct {
	Columns []Column
	Rows    [][]any
}

func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}

func (rs *ResultSet) headers() []any {
	headers := make([]any, len(rs.Columns))
	for i, c := range rs.Columns {
		headers[i] = c.Name
	}
	return headers
}

// Table writes the result as aligned text columns followed by a row count.
func Table(w io.Writer, data *ResultSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	names := make([]string, len(data.Columns))
	rules := make([]string, len(data.Columns))
	for i, c := range data.Columns {
		names[i] = c.Name
		rules[i] = dashes(len(c.Name))
	}
	writeLine(tw, names)
	writeLine(tw, rules)

	cells := make([]string, len(data.Columns))
	for _, row := range data.Rows {
		for j := range cells {
			cells[j] = FormatValue(row[j], data.Columns[j].Type)
		}
		writeLine(tw, cells)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", data.RowCount())
	return err
}

// FormatValue renders a fetched value for text output.
func FormatValue(v any, typ string) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "0x" + hex.EncodeToString(val)
	case time.Time:
		if typ == "date" {
			return val.Format(time.DateOnly)
		}
		return val.Format("2006-01-02 15:04:05.999999")
	default:
		return fmt.Sprint(val)
	}
}

func writeLine(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			io.WriteString(w, "\t")
		}
		io.WriteString(w, cell)
	}
	io.WriteString(w, "\n")
}

func dashes(n int) string {
	b := make([]byte, max(n, 1))
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
