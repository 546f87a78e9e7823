package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 80

// Styles are int because excelize.File.NewStyle() returns style index
type Styles struct {
	Number   int
	Date     int
	DateTime int
}

// Creates new default styles
func NewStyles(f *excelize.File) (*Styles, error) {
	dateStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 14,
	})
	if err != nil {
		return nil, err
	}

	dateTimeStyle, err := f.NewStyle(&excelize.Style{
		NumFmt: 22,
	})
	if err != nil {
		return nil, err
	}

	decimalPlaces := 2
	numberStyle, err := f.NewStyle(&excelize.Style{
		NumFmt:        0,
		DecimalPlaces: &decimalPlaces,
	})
	if err != nil {
		return nil, err
	}

	return &Styles{
		Number:   numberStyle,
		Date:     dateStyle,
		DateTime: dateTimeStyle,
	}, nil
}

// Excel writes the result to a single sheet of a new workbook at output.
func Excel(ctx context.Context, data *ResultSet, output, sheetName string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing file", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := writeDataToSheet(f, sheetName, data); err != nil {
		slog.ErrorContext(ctx, "Error writing data to sheet", "error", err)
		return err
	}

	freezeHeader(f, sheetName)
	if err := f.SaveAs(output); err != nil {
		slog.ErrorContext(ctx, "Error saving file", "error", err)
		return err
	}

	slog.DebugContext(ctx, "workbook saved", "path", output, "rows", data.RowCount())
	return nil
}

func writeDataToSheet(f *excelize.File, sheetName string, data *ResultSet) error {
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	styles, err := NewStyles(f)
	if err != nil {
		return err
	}

	colStyles := make(map[int]int, len(data.Columns))
	for k, v := range data.Columns {
		switch v.Type {
		case "integer", "unsigned", "float":
			colStyles[k] = styles.Number
		case "date":
			colStyles[k] = styles.Date
		case "datetime":
			colStyles[k] = styles.DateTime
		}
	}

	// Stream writers need widths before the first row
	colsWidth := make([]float64, len(data.Columns))
	for j, c := range data.Columns {
		colsWidth[j] = float64(len(c.Name))
	}
	for _, row := range data.Rows {
		for j := range data.Columns {
			colsWidth[j] = max(colsWidth[j], float64(len(FormatValue(row[j], data.Columns[j].Type))))
		}
	}
	for j, width := range colsWidth {
		if err := sw.SetColWidth(j+1, j+1, min(width+2, maxColumnWidth)); err != nil {
			return err
		}
	}

	if err := sw.SetRow("A1", data.headers()); err != nil {
		return err
	}

	for i, row := range data.Rows {
		rowData := make([]any, len(data.Columns))
		for j := range data.Columns {
			val := cellValue(row[j])
			if styleID, ok := colStyles[j]; ok && val != nil {
				rowData[j] = excelize.Cell{
					Value:   val,
					StyleID: styleID,
				}
			} else {
				rowData[j] = val
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, rowData); err != nil {
			return err
		}
	}

	if data.RowCount() > 0 && len(data.Columns) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(data.Columns), data.RowCount()+1)

		enabled := true
		err = sw.AddTable(&excelize.Table{
			Range:             fmt.Sprintf("A1:%s", lastCell),
			Name:              tableName(sheetName),
			StyleName:         "TableStyleMedium2",
			ShowFirstColumn:   false,
			ShowLastColumn:    false,
			ShowRowStripes:    &enabled,
			ShowColumnStripes: false,
		})
		if err != nil {
			return err
		}
	}

	return sw.Flush()
}

// cellValue converts values excelize cannot store natively.
func cellValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return FormatValue(val, "blob")
	case time.Time:
		return val
	default:
		return v
	}
}

// tableName derives a valid table name from a sheet name.
func tableName(sheetName string) string {
	var sb strings.Builder
	sb.WriteString("Table_")
	for _, r := range sheetName {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func freezeHeader(f *excelize.File, sheetName string) {
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomRight",
	})
}
