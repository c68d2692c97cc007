package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/specialistvlad/soqlgrid/internal/record"
	"gopkg.in/yaml.v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Records writes flattened records. Columns follow record.Columns.
func Records(w io.Writer, f Format, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	cols := record.Columns(records)
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = Cell(r[c])
		}
		rows[i] = row
	}
	return Rows(w, f, cols, rows, records)
}

// Rows writes tabular data. Table and CSV use headers and rows; JSON and
// YAML encode v instead so no type information is lost.
func Rows(w io.Writer, f Format, headers []string, rows [][]string, v any) error {
	switch Resolve(f, w) {
	case Table:
		return writeTable(w, headers, rows)
	case CSV:
		return writeCSV(w, headers, rows)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q", f)
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	if len(headers) == 0 {
		_, err := fmt.Fprintln(w, "(no records)")
		return err
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d row(s)\n", len(rows))
	return err
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := cw.Write(headers); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// Cell formats one value for a table or CSV cell. Nested record lists show
// as their size.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case []record.Record:
		return countLabel(len(val), "record")
	case []any:
		return countLabel(len(val), "item")
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("[1 %s]", noun)
	}
	return fmt.Sprintf("[%d %ss]", n, noun)
}
