// Package schemareader populates schema.Input from a fitsio.Table and
// re-validates a later file's schema against a bundle's established one
// (spec §4.2).
package schemareader

import (
	"fmt"

	"fits2db/internal/fitsio"
	"fits2db/internal/schema"
)

// Options configures how TDIM-described array columns are interpreted.
type Options struct {
	// Explode, when true, makes a non-string column with a TDIMn
	// keyword report a 2-D (nrows, ncols) shape instead of a flat
	// repeat count.
	Explode bool
	// Quote enables fixed-width quoting of STRING columns, which adds
	// two characters (the surrounding quotes) to the display width.
	Quote bool
}

// Read populates a schema.Input from first_col through last_col
// (inclusive, 1-based) of t.
func Read(t fitsio.Table, firstCol, lastCol int, opts Options) (*schema.Input, error) {
	if firstCol < 1 || lastCol > t.NumCols() || firstCol > lastCol {
		return nil, fmt.Errorf("schemareader: invalid column range [%d,%d] for table with %d columns", firstCol, lastCol, t.NumCols())
	}
	in := &schema.Input{}
	for ord := firstCol; ord <= lastCol; ord++ {
		col, err := readColumn(t, ord, opts)
		if err != nil {
			return nil, err
		}
		in.Columns = append(in.Columns, col)
	}
	return in, nil
}

func readColumn(t fitsio.Table, ordinal int, opts Options) (*schema.Column, error) {
	meta, err := t.Column(ordinal)
	if err != nil {
		return nil, fmt.Errorf("schemareader: column %d: %w", ordinal, err)
	}

	cellType := cellTypeOf(meta.TypeCode)
	c := &schema.Column{
		Ordinal:      ordinal,
		Name:         meta.Name,
		Type:         cellType,
		Repeat:       meta.Repeat,
		Width:        meta.Width,
		DisplayWidth: meta.DisplayWidth,
		Units:        meta.Units,
		NDim:         1,
		NRows:        1,
		NCols:        meta.Repeat,
	}

	if meta.HasTDIM && opts.Explode && cellType != schema.String {
		c.NDim = 2
		c.NRows = meta.TDIMRows
		c.NCols = meta.TDIMCols
	}

	if cellType == schema.String && opts.Quote {
		c.DisplayWidth += 2
	}

	return c, nil
}

func cellTypeOf(code byte) schema.CellType {
	switch code {
	case 'A':
		return schema.String
	case 'L':
		return schema.Logical
	case 'B':
		return schema.Byte
	case 'S':
		return schema.SByte
	case 'I':
		return schema.Short
	case 'U':
		return schema.UShort
	case 'J':
		return schema.Int
	case 'V':
		return schema.UInt
	case 'K':
		return schema.LongLong
	case 'E':
		return schema.Float
	case 'D':
		return schema.Double
	case 'X':
		return schema.Bit
	case 'C':
		return schema.Complex64
	case 'M':
		return schema.Complex128
	case 'P', 'Q':
		return schema.VarArray
	default:
		return schema.VarArray
	}
}

// Validate reads t's schema as Read does and compares it against want on
// the fields the bundle invariant cares about (spec §3, §4.2). A
// non-nil error, from either the read itself or a field mismatch,
// means the file does not match the bundle schema and should be
// skipped with a diagnostic.
func Validate(t fitsio.Table, firstCol, lastCol int, opts Options, want *schema.Input) error {
	got, err := Read(t, firstCol, lastCol, opts)
	if err != nil {
		return fmt.Errorf("schemareader: could not read schema for validation: %w", err)
	}
	return want.ValidateAgainst(got)
}
