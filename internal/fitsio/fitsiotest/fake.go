// Package fitsiotest provides an in-memory fitsio.Table/fitsio.File
// double for exercising SchemaReader, RowDriver, and FileLoop without a
// real FITS file, mirroring the role of an in-process test fixture.
package fitsiotest

import (
	"fmt"

	"fits2db/internal/fitsio"
)

// Table is an in-memory fitsio.Table backed by a flat row-major byte
// buffer, already in FITS big-endian on-disk order.
type Table struct {
	Simple    bool
	Cols      []fitsio.ColumnMeta
	Rows      int64
	RowBytes  []byte // len == Rows * RowByteWidth()
	ChunkHint int64
}

func (t *Table) IsSimple() bool { return t.Simple }
func (t *Table) NumRows() int64 { return t.Rows }
func (t *Table) NumCols() int   { return len(t.Cols) }

func (t *Table) Column(ordinal int) (fitsio.ColumnMeta, error) {
	if ordinal < 1 || ordinal > len(t.Cols) {
		return fitsio.ColumnMeta{}, fmt.Errorf("fitsiotest: ordinal %d out of range", ordinal)
	}
	return t.Cols[ordinal-1], nil
}

func (t *Table) OptimalChunkRows() int64 {
	if t.ChunkHint > 0 {
		return t.ChunkHint
	}
	return t.Rows
}

func (t *Table) RowByteWidth() int {
	if len(t.RowBytes) == 0 || t.Rows == 0 {
		return 0
	}
	return len(t.RowBytes) / int(t.Rows)
}

func (t *Table) ReadRows(firstRow, n int64) ([]byte, error) {
	width := t.RowByteWidth()
	if firstRow < 1 || firstRow+n-1 > t.Rows {
		return nil, fmt.Errorf("fitsiotest: row range [%d,%d) out of bounds (table has %d rows)", firstRow, firstRow+n, t.Rows)
	}
	start := (firstRow - 1) * int64(width)
	end := start + n*int64(width)
	return t.RowBytes[start:end], nil
}

// File is an in-memory fitsio.File wrapping a single Table, enough to
// exercise FileLoop's extension-selection paths.
type File struct {
	Tables      map[int]*Table
	NamedTables map[string]*Table
	Default     *Table
	Closed      bool
}

func (f *File) FirstTable() (fitsio.Table, error) {
	if f.Default == nil {
		return nil, fmt.Errorf("fitsiotest: no default table")
	}
	return f.Default, nil
}

func (f *File) TableByNumber(n int) (fitsio.Table, error) {
	t, ok := f.Tables[n]
	if !ok {
		return nil, fmt.Errorf("fitsiotest: no table at extension %d", n)
	}
	return t, nil
}

func (f *File) TableByName(name string) (fitsio.Table, error) {
	t, ok := f.NamedTables[name]
	if !ok {
		return nil, fmt.Errorf("fitsiotest: no table named %q", name)
	}
	return t, nil
}

func (f *File) Close() error {
	f.Closed = true
	return nil
}
