package emit

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fits2db/internal/schema"
)

func be32(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}

func be16(v int16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(v))
	return b
}

func be64f(v float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b
}

func be32f(v float32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func textOutput(t *testing.T, oc *schema.OutputColumn, cell []byte, opts TextOptions) string {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, EncodeText(w, oc, cell, opts))
	require.NoError(t, w.Flush())
	return buf.String()
}

// Scenario 1 (spec §8): one 1J column, csv, noheader.
func TestScenarioIntCSV(t *testing.T) {
	col := &schema.Column{Name: "v", Type: schema.Int, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "v", Source: col}
	opts := TextOptions{Delimiter: ',', Style: StyleGeneric}

	assert.Equal(t, "42", textOutput(t, oc, be32(42), opts))
	assert.Equal(t, "-7", textOutput(t, oc, be32(-7), opts))
}

// Scenario 3 (spec §8): 4A string, singlequote, with/without nostrip.
func TestScenarioStringQuote(t *testing.T) {
	col := &schema.Column{Name: "s", Type: schema.String, Repeat: 4, NRows: 1, NCols: 4}
	oc := &schema.OutputColumn{Name: "s", Source: col}

	stripped := TextOptions{Strip: true, Quote: QuoteWrap, QuoteChar: '\''}
	assert.Equal(t, "'hi'", textOutput(t, oc, []byte("  hi"), stripped))

	unstripped := TextOptions{Strip: false, Quote: QuoteWrap, QuoteChar: '\''}
	assert.Equal(t, "'  hi'", textOutput(t, oc, []byte("  hi"), unstripped))
}

// Scenario 4 (spec §8): 2I array column, generic csv vs exploded.
func TestScenarioArrayWholeVsExploded(t *testing.T) {
	col := &schema.Column{Name: "col", Type: schema.Short, Repeat: 2, NRows: 1, NCols: 2}
	whole := &schema.OutputColumn{Name: "col", Source: col}
	opts := TextOptions{Delimiter: ',', QuoteChar: '"', Quote: QuoteWrap, Style: StyleGeneric}

	cell := append(be16(1), be16(2)...)
	assert.Equal(t, `"(1,2)"`, textOutput(t, whole, cell, opts))

	exploded1 := &schema.OutputColumn{Name: "col_1", Source: col, ElemIndex1: 1}
	exploded2 := &schema.OutputColumn{Name: "col_2", Source: col, ElemIndex1: 2}
	assert.Equal(t, "1", textOutput(t, exploded1, cell, opts))
	assert.Equal(t, "2", textOutput(t, exploded2, cell, opts))
}

func TestSQLArrayBracketsUnquoted(t *testing.T) {
	col := &schema.Column{Name: "col", Type: schema.Short, Repeat: 2, NRows: 1, NCols: 2}
	whole := &schema.OutputColumn{Name: "col", Source: col}
	opts := TextOptions{Delimiter: ',', SQLArrayBrackets: true, Style: StyleGeneric}
	cell := append(be16(3), be16(4)...)
	assert.Equal(t, "{3,4}", textOutput(t, whole, cell, opts))
}

// Scenario 5 (spec §8): 1E float, NaN / +Inf / 1.5, postgres style.
func TestScenarioFloatSpecialValues(t *testing.T) {
	col := &schema.Column{Name: "f", Type: schema.Float, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "f", Source: col}
	opts := TextOptions{Style: StylePostgres}

	assert.Equal(t, "NaN", textOutput(t, oc, be32f(float32(math.NaN())), opts))
	assert.Equal(t, "Infinity", textOutput(t, oc, be32f(float32(math.Inf(1))), opts))
	assert.Equal(t, "1.500000", textOutput(t, oc, be32f(1.5), opts))
}

func TestFloatSpecialValuesMySQLSQLiteQuoted(t *testing.T) {
	col := &schema.Column{Name: "f", Type: schema.Float, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "f", Source: col}
	opts := TextOptions{Style: StyleMySQLSQLite}

	assert.Equal(t, "'NaN'", textOutput(t, oc, be32f(float32(math.NaN())), opts))
	assert.Equal(t, "'-Infinity'", textOutput(t, oc, be32f(float32(math.Inf(-1))), opts))
}

func TestDoublePrecision16Digits(t *testing.T) {
	col := &schema.Column{Name: "d", Type: schema.Double, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "d", Source: col}
	out := textOutput(t, oc, be64f(1.0/3.0), TextOptions{Style: StyleGeneric})
	assert.Equal(t, "0.3333333333333333", out)
}

func TestLogicalEncoding(t *testing.T) {
	col := &schema.Column{Name: "b", Type: schema.Logical, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "b", Source: col}
	assert.Equal(t, "1", textOutput(t, oc, []byte{'T'}, TextOptions{}))
	assert.Equal(t, "0", textOutput(t, oc, []byte{'F'}, TextOptions{}))
}

func TestUnsupportedTypeReturnsError(t *testing.T) {
	col := &schema.Column{Name: "x", Type: schema.Bit, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "x", Source: col}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	err := EncodeText(w, oc, []byte{0}, TextOptions{})
	assert.Error(t, err)
}

func TestIPACRightPads(t *testing.T) {
	col := &schema.Column{Name: "v", Type: schema.Int, Repeat: 1, NRows: 1, NCols: 1, DisplayWidth: 6}
	oc := &schema.OutputColumn{Name: "v", Source: col}
	out := textOutput(t, oc, be32(42), TextOptions{IPAC: true, Style: StyleGeneric})
	assert.Equal(t, "42    ", out)
}

// Scenario 2 (spec §8): one 1J column, postgres binary: per-field
// 4-byte length then 4-byte big-endian payload.
func TestScenarioBinaryInt(t *testing.T) {
	col := &schema.Column{Name: "v", Type: schema.Int, Repeat: 1, NRows: 1, NCols: 1}
	oc := &schema.OutputColumn{Name: "v", Source: col}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, EncodeBinary(w, oc, be32(42), true))
	require.NoError(t, w.Flush())

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x2A}, buf.Bytes())

	buf.Reset()
	w = bufio.NewWriter(&buf)
	require.NoError(t, EncodeBinary(w, oc, be32(-7), true))
	require.NoError(t, w.Flush())
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x04, 0xFF, 0xFF, 0xFF, 0xF9}, buf.Bytes())
}

func TestBinaryPackedArray(t *testing.T) {
	col := &schema.Column{Name: "col", Type: schema.Short, Repeat: 2, NRows: 1, NCols: 2}
	oc := &schema.OutputColumn{Name: "col", Source: col}
	cell := append(be16(1), be16(2)...)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, EncodeBinary(w, oc, cell, true))
	require.NoError(t, w.Flush())

	// length = 2*2 = 4, then the packed payload
	assert.Equal(t, []byte{0, 0, 0, 4, 0, 1, 0, 2}, buf.Bytes())
}

func TestBinaryStringLengthPrefix(t *testing.T) {
	col := &schema.Column{Name: "s", Type: schema.String, Repeat: 4, NRows: 1, NCols: 4}
	oc := &schema.OutputColumn{Name: "s", Source: col}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, EncodeBinary(w, oc, []byte("  hi"), true))
	require.NoError(t, w.Flush())
	assert.Equal(t, []byte{0, 0, 0, 2, 'h', 'i'}, buf.Bytes())
}
