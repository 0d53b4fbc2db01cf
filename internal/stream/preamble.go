package stream

import (
	"bufio"
	"fmt"
	"strings"

	"fits2db/internal/config"
	"fits2db/internal/schema"
)

// pgBinarySignature is the fixed PG-binary preamble body (spec §4.6,
// §6): the 11-byte signature, 4-byte flags field, and 4-byte
// header-extension length, all constant.
var pgBinarySignature = []byte("PGCOPY\n\377\r\n\x00\x00\x00\x00\x00\x00\x00\x00\x00")

// Preamble writes the once-per-bundle header for pos (spec §4.6). It is
// a no-op unless pos.IsFirstInBundle().
func Preamble(w *bufio.Writer, cfg *config.RunConfig, out *schema.Output, tableName string, pos Position) error {
	if !pos.IsFirstInBundle() {
		return nil
	}

	switch cfg.Format {
	case config.FormatPostgres:
		return postgresPreamble(w, cfg, out, tableName)
	case config.FormatMySQL, config.FormatSQLite:
		return sqlInsertPreamble(w, cfg, out, tableName)
	case config.FormatIPAC:
		return ipacPreamble(w, out)
	default:
		return delimitedPreamble(w, cfg, out)
	}
}

func columnList(out *schema.Output) []string {
	names := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		names[i] = c.Name
	}
	return names
}

func createTableStatement(cfg *config.RunConfig, out *schema.Output, tableName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS %s (\n", tableName)
	for i, c := range out.Columns {
		sb.WriteString("  " + c.Name + " " + c.SQLTypeSpelling)
		if i < len(out.Columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(");\n")
	return sb.String()
}

func writePreambleDDL(w *bufio.Writer, cfg *config.RunConfig, out *schema.Output, tableName string) error {
	if cfg.Format == config.FormatMySQL && cfg.DBName != "" {
		if _, err := fmt.Fprintf(w, "CREATE DATABASE IF NOT EXISTS %s; USE %s;\n", cfg.DBName, cfg.DBName); err != nil {
			return err
		}
	}
	if cfg.Drop {
		if _, err := fmt.Fprintf(w, "DROP TABLE IF EXISTS %s CASCADE;\n", tableName); err != nil {
			return err
		}
	}
	if cfg.Create {
		if _, err := w.WriteString(createTableStatement(cfg, out, tableName)); err != nil {
			return err
		}
	}
	if cfg.Truncate {
		if _, err := fmt.Fprintf(w, "TRUNCATE TABLE %s;\n", tableName); err != nil {
			return err
		}
	}
	return nil
}

func postgresPreamble(w *bufio.Writer, cfg *config.RunConfig, out *schema.Output, tableName string) error {
	if err := writePreambleDDL(w, cfg, out, tableName); err != nil {
		return err
	}
	if cfg.Binary {
		if _, err := fmt.Fprintf(w, "COPY %s FROM stdin WITH BINARY;\n", tableName); err != nil {
			return err
		}
		_, err := w.Write(pgBinarySignature)
		return err
	}
	_, err := fmt.Fprintf(w, "COPY %s (%s) from stdin;\n", tableName, strings.Join(columnList(out), ", "))
	return err
}

func sqlInsertPreamble(w *bufio.Writer, cfg *config.RunConfig, out *schema.Output, tableName string) error {
	if err := writePreambleDDL(w, cfg, out, tableName); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES\n", tableName, strings.Join(columnList(out), ", "))
	return err
}

func delimitedPreamble(w *bufio.Writer, cfg *config.RunConfig, out *schema.Output) error {
	if cfg.NoHeader {
		return nil
	}
	// Header row of column names is always comma-separated, regardless
	// of the active cell delimiter (spec §4.6).
	_, err := fmt.Fprintf(w, "%s\n", strings.Join(columnList(out), ","))
	return err
}

func ipacPreamble(w *bufio.Writer, out *schema.Output) error {
	widths := IPACColumnWidths(out)
	if err := writeIPACRow(w, names(out), widths); err != nil {
		return err
	}
	return writeIPACRow(w, ipacTypes(out), widths)
}

// IPACColumnWidths returns each output column's fixed field width: the
// widest of its name, its declared display width, and its IPAC type
// spelling (spec §4.6 IPAC framing). Both the header rows here and the
// data rows rowdriver writes pad to this same width so the table stays
// column-aligned.
func IPACColumnWidths(out *schema.Output) []int {
	widths := make([]int, len(out.Columns))
	for i, c := range out.Columns {
		widths[i] = IPACCellWidth(c)
	}
	return widths
}

func names(out *schema.Output) []string {
	return columnList(out)
}

func ipacTypes(out *schema.Output) []string {
	types := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		types[i] = c.IPACTypeSpelling
	}
	return types
}

// IPACCellWidth returns c's fixed IPAC field width (exported for reuse
// by rowdriver, which must pad data cells to the same width the header
// rows use).
func IPACCellWidth(c schema.OutputColumn) int {
	w := len(c.Name)
	if c.Source != nil && c.Source.DisplayWidth > w {
		w = c.Source.DisplayWidth
	}
	if len(c.IPACTypeSpelling) > w {
		w = len(c.IPACTypeSpelling)
	}
	return w
}

func writeIPACRow(w *bufio.Writer, cells []string, widths []int) error {
	if err := WriteIPACCells(w, cells, widths); err != nil {
		return err
	}
	_, err := w.WriteString("\n")
	return err
}

// WriteIPACCells writes one `|`-bracketed row of already-rendered cell
// text with no trailing newline: rowdriver uses it for data rows, where
// the newline is RowSeparator's job (spec §4.6 IPAC framing), and the
// header preamble above wraps it to add the newline itself.
func WriteIPACCells(w *bufio.Writer, cells []string, widths []int) error {
	if _, err := w.WriteString("|"); err != nil {
		return err
	}
	for i, cell := range cells {
		padded := padCenterOrRight(cell, widths[i])
		if _, err := fmt.Fprintf(w, " %s |", padded); err != nil {
			return err
		}
	}
	return nil
}

func padCenterOrRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
