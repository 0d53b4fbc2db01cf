// Package fitsio defines the narrow boundary between this system and the
// external FITS reader that provides keyword access, row/col metadata,
// and raw row-byte reads (spec §1, §6: FITS file opening and HDU
// navigation are out of scope for this system). Production code only
// ever depends on the interfaces below; a single adapter
// (astrogo_adapter.go) binds them to a real third-party FITS library.
package fitsio

import "io"

// ColumnMeta is one column's header-derived metadata, exactly the
// fields SchemaReader needs: TTYPEn, scalar type code, repeat count,
// physical width, display width, units, and an optional TDIMn shape.
type ColumnMeta struct {
	Ordinal      int
	Name         string
	TypeCode     byte // FITS TFORM type letter: A, L, B, S, I, U, J, V, K, E, D, X, C, M, or 'P'/'Q' for var-length
	Repeat       int
	Width        int
	DisplayWidth int
	Units        string
	// HasTDIM, TDIMRows, TDIMCols describe an optional TDIMn keyword.
	HasTDIM  bool
	TDIMRows int
	TDIMCols int
}

// Table is the subset of a FITS BINTABLE HDU this system consumes: its
// header keywords, column metadata, total row count, an optimal chunk
// size hint, and raw row-byte reads.
type Table interface {
	// IsSimple reports whether the file this HDU belongs to declared
	// SIMPLE = T in its primary header.
	IsSimple() bool
	// NumRows returns the table's total row count (NAXIS2).
	NumRows() int64
	// NumCols returns the table's column count (TFIELDS).
	NumCols() int
	// Column returns metadata for the 1-based column ordinal.
	Column(ordinal int) (ColumnMeta, error)
	// OptimalChunkRows returns the reader's recommended row-chunk size
	// for bulk reads (e.g. based on internal buffer/tile sizing).
	OptimalChunkRows() int64
	// RowByteWidth returns the total on-disk byte width of one row.
	RowByteWidth() int
	// ReadRows reads n rows starting at the 1-based row index
	// firstRow, returning exactly n*RowByteWidth() raw bytes in FITS
	// (big-endian) on-disk order.
	ReadRows(firstRow, n int64) ([]byte, error)
}

// Opener opens a FITS file from r; a gzip-compressed input has already
// been decompressed by the caller. The returned File navigates to a
// table HDU, by first-table-found, explicit extension number, or
// explicit extension name (mutually exclusive, spec §4.7).
type Opener interface {
	Open(r io.ReadSeeker) (File, error)
}

// File is an open FITS file providing HDU navigation.
type File interface {
	// FirstTable returns the first BINTABLE extension HDU.
	FirstTable() (Table, error)
	// TableByNumber returns the BINTABLE at the given extension number,
	// counting the primary HDU as 0 (so 1 is the first extension).
	TableByNumber(n int) (Table, error)
	// TableByName returns the first BINTABLE extension whose EXTNAME
	// matches name.
	TableByName(name string) (Table, error)
	// Close releases resources held by the file.
	Close() error
}
