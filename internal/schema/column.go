// Package schema holds the single source of truth for a FITS binary
// table's column layout: the per-column metadata read from the header
// (Input) and the derived, possibly-exploded layout that is actually
// written to the target format (Output).
package schema

import "fmt"

// CellType identifies a FITS binary-table column's on-disk scalar type.
type CellType string

const (
	String   CellType = "STRING"
	Logical  CellType = "LOGICAL"
	Byte     CellType = "BYTE"
	SByte    CellType = "SBYTE"
	Short    CellType = "SHORT"
	UShort   CellType = "USHORT"
	Int      CellType = "INT"
	UInt     CellType = "UINT"
	Int32    CellType = "INT32"
	LongLong CellType = "LONGLONG"
	Float    CellType = "FLOAT"
	Double   CellType = "DOUBLE"

	// Unsupported types. Reading one is not an error, but Build rejects
	// a column of any of these types, so a file containing one is
	// skipped as a whole with a diagnostic; no per-cell skip takes place.
	Bit        CellType = "BIT"
	Complex64  CellType = "COMPLEX64"
	Complex128 CellType = "COMPLEX128"
	VarArray   CellType = "VARARRAY"
)

// Supported reports whether t can be decoded and emitted by this system.
func (t CellType) Supported() bool {
	switch t {
	case Bit, Complex64, Complex128, VarArray:
		return false
	default:
		return true
	}
}

// IsInteger reports whether t's scalar representation is an integer.
func (t CellType) IsInteger() bool {
	switch t {
	case Logical, Byte, SByte, Short, UShort, Int, UInt, Int32, LongLong:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t's scalar representation is a float.
func (t CellType) IsFloat() bool {
	return t == Float || t == Double
}

// ScalarWidth returns the on-disk byte width of one scalar element of
// type t. STRING widths are per-field, not per-scalar, and are taken
// from Column.Repeat instead; ScalarWidth panics if called on String.
func (t CellType) ScalarWidth() int {
	switch t {
	case Logical, Byte, SByte:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Int32, Float:
		return 4
	case LongLong, Double:
		return 8
	default:
		panic(fmt.Sprintf("schema: ScalarWidth called on non-scalar type %q", t))
	}
}

// Column describes one column of a FITS binary table as read from the
// header (TTYPEn/TFORMn/TDIMn), independent of any target output format.
type Column struct {
	// Ordinal is this column's 1-based position in the table.
	Ordinal int `json:"ordinal"`
	// Name is the column's TTYPEn value.
	Name string `json:"name"`
	// Type is the normalized FITS scalar cell type.
	Type CellType `json:"type"`
	// Repeat is the number of scalar elements per row (TFORMn repeat
	// count). For STRING columns this equals the on-disk field width
	// in bytes.
	Repeat int `json:"repeat"`
	// Width is the physical byte width of one scalar element. For
	// STRING columns this is always 1 (one byte per character).
	Width int `json:"width"`
	// DisplayWidth is the column's preferred fixed display width, used
	// by IPAC and other fixed-width text renderings.
	DisplayWidth int `json:"displayWidth"`
	// NDim is 1 for a flat repeat-count column, 2 when TDIMn describes
	// a (nrows, ncols) shape and array-explode is enabled for a
	// non-string column.
	NDim int `json:"ndim"`
	// NRows and NCols give the logical 2-D shape; for NDim==1, NRows==1
	// and NCols==Repeat.
	NRows int `json:"nrows"`
	NCols int `json:"ncols"`
	// Units is the column's TUNITn value, if present.
	Units string `json:"units,omitempty"`
}

// Shape returns the column's logical (nrows, ncols) shape.
func (c *Column) Shape() (nrows, ncols int) {
	return c.NRows, c.NCols
}

// Elements returns the total number of scalar elements per row cell.
func (c *Column) Elements() int {
	return c.NRows * c.NCols
}

// Equal reports whether c and other agree on every field the bundle
// schema-match invariant cares about: name, scalar type, ndim, nrows,
// ncols, and (for non-string types) repeat (spec §3 invariants).
func (c *Column) Equal(other *Column) bool {
	if c.Name != other.Name || c.Type != other.Type || c.NDim != other.NDim {
		return false
	}
	if c.NRows != other.NRows || c.NCols != other.NCols {
		return false
	}
	if c.Type != String && c.Repeat != other.Repeat {
		return false
	}
	return true
}
