package stream

import (
	"bufio"

	"fits2db/internal/config"
	"fits2db/internal/schema"
)

// RowSeparator returns the bytes StreamProtocol writes between one row
// and the next, for the active format. SQL INSERT lists separate value
// tuples with a comma; plain delimited/IPAC formats just end the line
// (spec §4.5 step 6, §4.6). isLastRow means this is the last row of the
// whole ingest statement (the bundle's, or the run's under --concat) —
// NOT merely the last row of the current file — since a bundle/run can
// span several files sharing one INSERT. That last row gets neither a
// comma nor a newline here: Trailer writes the sole `;\n` immediately
// after it (spec §8 scenario 6, "single terminating `;\n`"), so adding
// either here would leave a stray blank line or double the terminator.
func RowSeparator(cfg *config.RunConfig, isLastRow bool) string {
	switch cfg.Format {
	case config.FormatMySQL, config.FormatSQLite:
		if isLastRow {
			return ""
		}
		return ",\n"
	case config.FormatPostgres:
		if cfg.Binary {
			return ""
		}
		return "\n"
	default:
		return "\n"
	}
}

// RowOpen returns the bytes written immediately before a row's cells.
// mysql/sqlite frame each row as a VALUES tuple; postgres COPY (text or
// binary) and plain delimited output write cells directly with no
// row-level wrapper. IPAC framing is handled separately by rowdriver
// (WriteIPACCells), since each cell needs its own pipe, not just the
// row's edges.
func RowOpen(cfg *config.RunConfig) string {
	if isInsertDialect(cfg.Format) {
		return "("
	}
	return ""
}

// RowClose returns the bytes written immediately after a row's cells,
// before RowSeparator.
func RowClose(cfg *config.RunConfig) string {
	if isInsertDialect(cfg.Format) {
		return ")"
	}
	return ""
}

func isInsertDialect(f config.Format) bool {
	return f == config.FormatMySQL || f == config.FormatSQLite
}

// FieldCountHeader writes the per-row field count PG-binary requires
// before a row's cells (spec §4.4, §6): a 2-byte big-endian count.
func FieldCountHeader(w *bufio.Writer, out *schema.Output) error {
	n := out.Len()
	_, err := w.Write([]byte{byte(n >> 8), byte(n)})
	return err
}

// DisableBinaryIfUnsupported reports whether binary mode must be
// disabled for out's layout: PG-binary cannot pack a non-string array
// column that array-explode left intact (spec §4.6, "binary mode is
// disallowed for non-string array columns that were not exploded").
// When it returns true, the caller should emit a diagnostic and fall
// back to text COPY.
func DisableBinaryIfUnsupported(out *schema.Output) bool {
	for _, oc := range out.Columns {
		if oc.Source == nil || oc.ElemIndex1 != 0 {
			continue
		}
		if oc.Source.Type != schema.String && oc.Source.Repeat > 1 {
			return true
		}
	}
	return false
}
