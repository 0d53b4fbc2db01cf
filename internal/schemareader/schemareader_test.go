package schemareader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fits2db/internal/fitsio"
	"fits2db/internal/fitsio/fitsiotest"
	"fits2db/internal/schema"
)

func sampleTable() *fitsiotest.Table {
	return &fitsiotest.Table{
		Simple: true,
		Rows:   2,
		Cols: []fitsio.ColumnMeta{
			{Ordinal: 1, Name: "id", TypeCode: 'J', Repeat: 1, Width: 4, DisplayWidth: 1},
			{Ordinal: 2, Name: "name", TypeCode: 'A', Repeat: 8, Width: 1, DisplayWidth: 8},
			{Ordinal: 3, Name: "m", TypeCode: 'I', Repeat: 6, Width: 2, DisplayWidth: 6, HasTDIM: true, TDIMRows: 2, TDIMCols: 3},
		},
	}
}

func TestReadBasicColumns(t *testing.T) {
	in, err := Read(sampleTable(), 1, 3, Options{})
	require.NoError(t, err)
	require.Len(t, in.Columns, 3)

	assert.Equal(t, schema.Int, in.Columns[0].Type)
	assert.Equal(t, schema.String, in.Columns[1].Type)
	assert.Equal(t, 8, in.Columns[1].Repeat)
	assert.Equal(t, 1, in.Columns[2].NDim, "TDIM only takes effect when Explode is set")
}

func TestReadWithExplodeSetsTDIMShape(t *testing.T) {
	in, err := Read(sampleTable(), 1, 3, Options{Explode: true})
	require.NoError(t, err)
	assert.Equal(t, 2, in.Columns[2].NDim)
	assert.Equal(t, 2, in.Columns[2].NRows)
	assert.Equal(t, 3, in.Columns[2].NCols)
}

func TestReadQuoteWidensStringDisplayWidth(t *testing.T) {
	in, err := Read(sampleTable(), 2, 2, Options{Quote: true})
	require.NoError(t, err)
	assert.Equal(t, 10, in.Columns[0].DisplayWidth)
}

func TestReadInvalidColumnRange(t *testing.T) {
	_, err := Read(sampleTable(), 5, 6, Options{})
	assert.Error(t, err)
}

func TestValidateAcceptsMatchingSchema(t *testing.T) {
	want, err := Read(sampleTable(), 1, 3, Options{})
	require.NoError(t, err)
	assert.NoError(t, Validate(sampleTable(), 1, 3, Options{}, want))
}

func TestValidateRejectsMismatchedSchema(t *testing.T) {
	want, err := Read(sampleTable(), 1, 3, Options{})
	require.NoError(t, err)

	other := sampleTable()
	other.Cols[0].Name = "renamed"
	assert.Error(t, Validate(other, 1, 3, Options{}, want))
}
