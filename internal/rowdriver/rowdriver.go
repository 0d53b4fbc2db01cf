package rowdriver

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"fits2db/internal/config"
	"fits2db/internal/emit"
	"fits2db/internal/fitsio"
	"fits2db/internal/schema"
	"fits2db/internal/stream"
)

// RowDriver walks a table's rows in chunks, dispatching each cell to
// the emit package and appending synthetic columns, per spec §4.5. It
// holds no state of its own beyond the row cursor and the memoized IPAC
// column widths; the serial counter
// and PRNG live in the shared config.RunState so they stay contiguous
// across files in a run (spec §9, design note "Global mutable state").
type RowDriver struct {
	Table  fitsio.Table
	Out    *schema.Output
	Cfg    *config.RunConfig
	State  *config.RunState
	Text   emit.TextOptions
	W      *bufio.Writer
	ErrLog *bufio.Writer // per-cell diagnostics, typically os.Stderr

	// LastFileOfStatement reports whether this table's file is the last
	// one contributing rows to the ingest statement currently open — the
	// bundle's last file, or (under --concat) the run's last file
	// (stream.Position.EmitsTrailer). A bundle can span several files
	// sharing one INSERT/COPY, so only this file's last row, when this
	// is also that file, is the statement's actual last row; every
	// other file's last row must still continue the tuple list.
	LastFileOfStatement bool

	ipacWidths []int // lazily computed, memoized per-column IPAC field widths
}

// NewRowDriver builds a RowDriver with a default diagnostic writer of
// os.Stderr. out is the derived output layout actually written; its
// columns are assumed to appear in input-column order (true of every
// Output returned by schema.Build), so a single cursor pass over a raw
// row can service them in order. lastFileOfStatement is
// RowDriver.LastFileOfStatement (spec §4.6 bundle/concat framing).
func NewRowDriver(t fitsio.Table, out *schema.Output, cfg *config.RunConfig, state *config.RunState, text emit.TextOptions, w *bufio.Writer, lastFileOfStatement bool) *RowDriver {
	return &RowDriver{
		Table:               t,
		Out:                 out,
		Cfg:                 cfg,
		State:               state,
		Text:                text,
		W:                   w,
		ErrLog:              bufio.NewWriter(os.Stderr),
		LastFileOfStatement: lastFileOfStatement,
	}
}

func cellWidth(c *schema.Column) int {
	if c.Type == schema.String {
		return c.Repeat
	}
	return c.Repeat * c.Width
}

// Run streams every row of Table starting at row 1 (spec §4.5, "first
// row" tracked explicitly and advanced by chunk size each iteration,
// spec §9 Open Question 3). chunk is the caller-resolved chunk size
// (RunConfig.Chunk, or the table's optimal hint when zero).
func (d *RowDriver) Run(chunk int64) error {
	total := d.Table.NumRows()
	width := int64(d.Table.RowByteWidth())
	firstRow := int64(1)

	for firstRow <= total {
		n := chunk
		if firstRow+n-1 > total {
			n = total - firstRow + 1
		}
		buf, err := d.Table.ReadRows(firstRow, n)
		if err != nil {
			return fmt.Errorf("rowdriver: read rows [%d,%d): %w", firstRow, firstRow+n, err)
		}
		for i := int64(0); i < n; i++ {
			rowIsLast := d.LastFileOfStatement && firstRow+i == total
			row := buf[i*width : (i+1)*width]
			if err := d.writeRow(row, rowIsLast); err != nil {
				return err
			}
		}
		firstRow += n
	}
	return d.ErrLog.Flush()
}

func (d *RowDriver) writeRow(row []byte, isLast bool) error {
	if d.Cfg.Format == config.FormatIPAC {
		return d.writeIPACRow(row, isLast)
	}
	if d.Cfg.Binary && d.Cfg.Format == config.FormatPostgres {
		if err := stream.FieldCountHeader(d.W, d.Out); err != nil {
			return err
		}
	}
	if _, err := d.W.WriteString(stream.RowOpen(d.Cfg)); err != nil {
		return err
	}

	cur := newCursor(row)
	var cell []byte
	curOrdinal := -1

	for i := range d.Out.Columns {
		oc := &d.Out.Columns[i]
		if i > 0 {
			if err := d.writeCellDelimiter(); err != nil {
				return err
			}
		}

		if oc.Synthetic != schema.NotSynthetic {
			if err := d.writeSynthetic(oc); err != nil {
				return err
			}
			continue
		}

		if oc.Source.Ordinal != curOrdinal {
			var err error
			cell, err = cur.take(cellWidth(oc.Source))
			if err != nil {
				return fmt.Errorf("rowdriver: column %q: %w", oc.Source.Name, err)
			}
			curOrdinal = oc.Source.Ordinal
		}
		d.writeCell(oc, cell)
	}

	if _, err := d.W.WriteString(stream.RowClose(d.Cfg)); err != nil {
		return err
	}
	_, err := d.W.WriteString(stream.RowSeparator(d.Cfg, isLast))
	return err
}

// writeIPACRow renders one data row in IPAC's `|`-bracketed fixed-width
// form (spec §4.6): every cell, synthetic or schema-derived, gets the
// same " value |" framing and column width the header rows use (spec
// §8 scenario involving IPAC output), not the generic comma-joined path
// writeRow uses for the other formats.
func (d *RowDriver) writeIPACRow(row []byte, isLast bool) error {
	if d.ipacWidths == nil {
		d.ipacWidths = stream.IPACColumnWidths(d.Out)
	}

	cur := newCursor(row)
	var cell []byte
	curOrdinal := -1
	cells := make([]string, len(d.Out.Columns))

	for i := range d.Out.Columns {
		oc := &d.Out.Columns[i]

		if oc.Synthetic != schema.NotSynthetic {
			cells[i] = d.syntheticText(oc)
			continue
		}

		if oc.Source.Ordinal != curOrdinal {
			var err error
			cell, err = cur.take(cellWidth(oc.Source))
			if err != nil {
				return fmt.Errorf("rowdriver: column %q: %w", oc.Source.Name, err)
			}
			curOrdinal = oc.Source.Ordinal
		}
		cells[i] = d.renderCellText(oc, cell)
	}

	if err := stream.WriteIPACCells(d.W, cells, d.ipacWidths); err != nil {
		return err
	}
	_, err := d.W.WriteString(stream.RowSeparator(d.Cfg, isLast))
	return err
}

// renderCellText is writeCell's text-mode rendering, captured as a
// string instead of written straight to d.W, so writeIPACRow can pad it
// to the column's fixed IPAC width before framing it in pipes.
func (d *RowDriver) renderCellText(oc *schema.OutputColumn, cell []byte) string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := emit.EncodeText(w, oc, cell, d.Text); err != nil {
		fmt.Fprintf(d.ErrLog, "fits2db: %v\n", err)
	}
	w.Flush()
	return buf.String()
}

// writeCell encodes one cell. An unsupported-type error is logged to
// ErrLog and swallowed: the cursor has already advanced past the
// column's full on-disk width, so the next column stays aligned
// regardless (spec §4.4 error condition).
func (d *RowDriver) writeCell(oc *schema.OutputColumn, cell []byte) {
	var err error
	if d.Cfg.Binary {
		err = emit.EncodeBinary(d.W, oc, cell, d.Cfg.Strip)
	} else {
		err = emit.EncodeText(d.W, oc, cell, d.Text)
	}
	if err != nil {
		fmt.Fprintf(d.ErrLog, "fits2db: %v\n", err)
	}
}

func (d *RowDriver) writeSynthetic(oc *schema.OutputColumn) error {
	if d.Cfg.Binary {
		return emit.EncodeSyntheticBinary(d.W, oc.Synthetic, d.syntheticValue(oc))
	}
	_, err := d.W.WriteString(d.syntheticText(oc))
	return err
}

// syntheticValue advances the shared serial counter/PRNG (spec §9
// "Global mutable state") and returns this synthetic column's value.
// Called exactly once per synthetic column per row; callers must not
// invoke it more than once for the same cell.
func (d *RowDriver) syntheticValue(oc *schema.OutputColumn) float64 {
	switch oc.Synthetic {
	case schema.AddColumn:
		return 1
	case schema.SidColumn:
		return float64(d.State.NextSerial())
	case schema.RidColumn:
		return d.State.NextRandom()
	}
	return 0
}

// syntheticText renders a synthetic column's text-mode value.
func (d *RowDriver) syntheticText(oc *schema.OutputColumn) string {
	num := d.syntheticValue(oc)
	if oc.Synthetic == schema.RidColumn {
		return fmt.Sprintf("%g", num)
	}
	return fmt.Sprintf("%d", int64(num))
}

func (d *RowDriver) writeCellDelimiter() error {
	if d.Cfg.Binary {
		return nil
	}
	if stream.RowOpen(d.Cfg) != "" {
		_, err := d.W.WriteString(", ")
		return err
	}
	_, err := d.W.WriteByte(d.Cfg.Delimiter)
	return err
}
