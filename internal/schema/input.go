package schema

import "fmt"

// Input is the ordered, 1-indexed sequence of columns populated from a
// FITS BINTABLE HDU's header.
type Input struct {
	Columns []*Column
}

// ByOrdinal returns the column with the given 1-based ordinal, or nil.
func (in *Input) ByOrdinal(ordinal int) *Column {
	for _, c := range in.Columns {
		if c.Ordinal == ordinal {
			return c
		}
	}
	return nil
}

// Len returns the number of input columns.
func (in *Input) Len() int {
	return len(in.Columns)
}

// RowByteWidth returns the total number of bytes one row occupies on
// disk, the sum over all columns of (repeat * width), with STRING
// columns contributing Repeat (their field width) bytes.
func (in *Input) RowByteWidth() int {
	total := 0
	for _, c := range in.Columns {
		if c.Type == String {
			total += c.Repeat
		} else {
			total += c.Repeat * c.Width
		}
	}
	return total
}

// ValidateAgainst checks that in matches other on every field the
// bundle schema-match invariant cares about (spec §3): same column
// count, and each column pairwise equal per Column.Equal. Returns a
// descriptive error identifying the first mismatch, or nil.
func (in *Input) ValidateAgainst(other *Input) error {
	if in.Len() != other.Len() {
		return fmt.Errorf("schema mismatch: %d columns vs %d columns", other.Len(), in.Len())
	}
	for i, c := range in.Columns {
		oc := other.Columns[i]
		if !c.Equal(oc) {
			return fmt.Errorf("schema mismatch: column %d (%s) differs from bundle schema (%s)", c.Ordinal, oc.Name, c.Name)
		}
	}
	return nil
}
