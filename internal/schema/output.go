package schema

import "fmt"

// OutputColumn is one column of the derived output layout: either a
// straight pass-through of an Input column, one scalar slot of an
// exploded array column, or a synthetic trailing column (add/sid/rid).
type OutputColumn struct {
	// Name is the output column name: the input name, "<name>_<i>" /
	// "<name>_<i>_<j>" for exploded array slots, or the caller-supplied
	// synthetic column name.
	Name string
	// Source is the input column this output column reads from, or nil
	// for a synthetic column.
	Source *Column
	// ElemIndex1, ElemIndex2 are the 1-based (row, col) indices into
	// Source this output column reads, when Source is non-nil and the
	// column was exploded from a 2-D (TDIM) shape. A 1-D exploded column
	// has ElemIndex1 set to the 1-based element index and ElemIndex2
	// zero. Both are zero when not exploded (the output column carries
	// the whole cell).
	ElemIndex1, ElemIndex2 int
	// Synthetic identifies which synthetic column this is, or "" for a
	// schema-derived column.
	Synthetic SyntheticKind
	// SQLTypeSpelling and IPACTypeSpelling are this column's
	// target-format type strings (spec §3 type mapping table).
	SQLTypeSpelling  string
	IPACTypeSpelling string
}

// SyntheticKind identifies one of the three synthetic trailing columns
// appended by spec §3.
type SyntheticKind string

const (
	NotSynthetic SyntheticKind = ""
	AddColumn    SyntheticKind = "add"
	SidColumn    SyntheticKind = "sid"
	RidColumn    SyntheticKind = "rid"
)

// Output is the final, ordered column layout actually written to the
// target format: the input columns (possibly exploded), followed by
// synthetic columns in (add, sid, rid) order.
type Output struct {
	Columns []OutputColumn
}

// Len returns the output column count, which both the SQL CREATE
// statement and the PG-binary per-row field count use (spec §4.3).
func (o *Output) Len() int {
	return len(o.Columns)
}

// BuildOptions configures OutputSchema derivation (spec §3).
type BuildOptions struct {
	// Explode turns on array-column expansion: each non-string column
	// of repeat > 1 becomes `repeat` scalar output columns.
	Explode bool
	// AddColumn, SidColumn, RidColumn are the caller-chosen names for
	// the three synthetic columns. An empty name omits that column.
	AddColumn string
	SidColumn string
	RidColumn string
}

// Build derives an Output layout from in per opts. This is a pure
// function of (in, opts); it allocates no shared or mutable state
// (spec §4.3, design note "Schema pair").
func Build(in *Input, opts BuildOptions) (*Output, error) {
	out := &Output{}
	for _, c := range in.Columns {
		cols, err := buildColumns(c, opts.Explode)
		if err != nil {
			return nil, err
		}
		out.Columns = append(out.Columns, cols...)
	}
	out.Columns = append(out.Columns, syntheticColumns(opts)...)
	return out, nil
}

func buildColumns(c *Column, explode bool) ([]OutputColumn, error) {
	if !c.Type.Supported() {
		return nil, fmt.Errorf("schema: unsupported column type %q for column %q", c.Type, c.Name)
	}
	if !explode || c.Type == String || c.Repeat <= 1 {
		return []OutputColumn{wholeColumn(c, explode)}, nil
	}
	return explodedColumns(c), nil
}

func wholeColumn(c *Column, explode bool) OutputColumn {
	return OutputColumn{
		Name:             c.Name,
		Source:           c,
		SQLTypeSpelling:  SQLType(c, explode),
		IPACTypeSpelling: IPACType(c),
	}
}

func explodedColumns(c *Column) []OutputColumn {
	cols := make([]OutputColumn, 0, c.Elements())
	scalarSQL := SQLType(c, true)
	scalarIPAC := IPACType(c)
	if c.NDim == 2 {
		for i := 1; i <= c.NRows; i++ {
			for j := 1; j <= c.NCols; j++ {
				cols = append(cols, OutputColumn{
					Name:             fmt.Sprintf("%s_%d_%d", c.Name, i, j),
					Source:           c,
					ElemIndex1:       i,
					ElemIndex2:       j,
					SQLTypeSpelling:  scalarSQL,
					IPACTypeSpelling: scalarIPAC,
				})
			}
		}
		return cols
	}
	for i := 1; i <= c.Repeat; i++ {
		cols = append(cols, OutputColumn{
			Name:             fmt.Sprintf("%s_%d", c.Name, i),
			Source:           c,
			ElemIndex1:       i,
			SQLTypeSpelling:  scalarSQL,
			IPACTypeSpelling: scalarIPAC,
		})
	}
	return cols
}

func syntheticColumns(opts BuildOptions) []OutputColumn {
	var cols []OutputColumn
	if opts.AddColumn != "" {
		cols = append(cols, OutputColumn{Name: opts.AddColumn, Synthetic: AddColumn, SQLTypeSpelling: "integer", IPACTypeSpelling: "int"})
	}
	if opts.SidColumn != "" {
		cols = append(cols, OutputColumn{Name: opts.SidColumn, Synthetic: SidColumn, SQLTypeSpelling: "integer", IPACTypeSpelling: "int"})
	}
	if opts.RidColumn != "" {
		cols = append(cols, OutputColumn{Name: opts.RidColumn, Synthetic: RidColumn, SQLTypeSpelling: "double precision", IPACTypeSpelling: "double"})
	}
	return cols
}
