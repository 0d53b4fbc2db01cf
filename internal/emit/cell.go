package emit

import (
	"bufio"
	"fmt"
	"strings"

	"fits2db/internal/schema"
)

// EncodeText writes one output column's text rendering to w. cell is
// the full on-disk byte range for oc.Source (oc.Source.Repeat*Width
// bytes, or oc.Source.Repeat bytes for STRING). Unsupported column
// types are reported via the returned error; callers advance the data
// pointer by the cell size regardless (spec §4.4 error condition).
func EncodeText(w *bufio.Writer, oc *schema.OutputColumn, cell []byte, opts TextOptions) error {
	c := oc.Source
	if c == nil {
		return fmt.Errorf("emit: EncodeText called on synthetic column %q", oc.Name)
	}
	if !c.Type.Supported() {
		return fmt.Errorf("Error: Unsupported column type %s", c.Type)
	}

	var rendered string
	var err error
	switch {
	case c.Type == schema.String:
		rendered = formatString(cell, opts)
	case oc.ElemIndex1 > 0:
		row, col := oc.ElemIndex1, oc.ElemIndex2
		if col == 0 {
			row, col = 1, oc.ElemIndex1
		}
		rendered, err = formatElement(c, cell, row, col, opts)
	default:
		rendered, err = formatWholeColumn(c, cell, opts)
	}
	if err != nil {
		return err
	}
	if opts.IPAC {
		rendered = padRight(rendered, c.DisplayWidth)
	}
	_, err = w.WriteString(rendered)
	return err
}

func formatElement(c *schema.Column, cell []byte, row, col int, opts TextOptions) (string, error) {
	raw, err := scalarSlice(c, cell, row, col)
	if err != nil {
		return "", err
	}
	return formatScalar(c.Type, raw, opts)
}

// formatWholeColumn renders every element of a non-exploded,
// non-string cell, joined by the active delimiter and wrapped in array
// brackets when repeat > 1 (spec §4.5 step 4; §4.4 array handling).
func formatWholeColumn(c *schema.Column, cell []byte, opts TextOptions) (string, error) {
	n := c.Elements()
	if n <= 1 {
		raw, err := scalarSlice(c, cell, 0, 0)
		if err != nil {
			return "", err
		}
		return formatScalar(c.Type, raw, opts)
	}

	parts := make([]string, 0, n)
	width := c.Type.ScalarWidth()
	for i := 0; i < n; i++ {
		raw := cell[i*width : (i+1)*width]
		s, err := formatScalar(c.Type, raw, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	joined := strings.Join(parts, string(opts.Delimiter))

	if opts.SQLArrayBrackets {
		return "{" + joined + "}", nil
	}
	if opts.Quote == QuotePassthrough {
		return "(" + joined + ")", nil
	}
	return string(opts.QuoteChar) + "(" + joined + ")" + string(opts.QuoteChar), nil
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// EncodeBinary writes one output column's PG-binary field to w: a
// 4-byte big-endian length followed by the payload (spec §4.4).
func EncodeBinary(w *bufio.Writer, oc *schema.OutputColumn, cell []byte, strip bool) error {
	c := oc.Source
	if c == nil {
		return fmt.Errorf("emit: EncodeBinary called on synthetic column %q", oc.Name)
	}
	if !c.Type.Supported() {
		return fmt.Errorf("Error: Unsupported column type %s", c.Type)
	}

	if c.Type == schema.String {
		return writeLengthPrefixed(w, binaryStringPayload(cell, strip))
	}

	if oc.ElemIndex1 > 0 {
		row, col := oc.ElemIndex1, oc.ElemIndex2
		if col == 0 {
			row, col = 1, oc.ElemIndex1
		}
		raw, err := scalarSlice(c, cell, row, col)
		if err != nil {
			return err
		}
		payload, err := binaryScalarPayload(c.Type, raw)
		if err != nil {
			return err
		}
		return writeLengthPrefixed(w, payload)
	}

	return writePackedBinary(w, c, cell)
}

// writePackedBinary writes a single length prefix covering every
// element of a non-exploded array column, followed by the contiguous
// big-endian payload (spec §4.4: "multi-element packed writes emit one
// length prefix and a contiguous payload").
func writePackedBinary(w *bufio.Writer, c *schema.Column, cell []byte) error {
	n := c.Elements()
	width := c.Type.ScalarWidth()

	if c.Type == schema.Logical {
		payload := make([]byte, 0, n*2)
		for i := 0; i < n; i++ {
			payload = append(payload, logicalBinaryPayload(cell[i:i+1])...)
		}
		return writeLengthPrefixed(w, payload)
	}

	payload := make([]byte, n*width)
	for i := 0; i < n; i++ {
		raw := cell[i*width : (i+1)*width]
		copy(payload[i*width:(i+1)*width], bigEndianBytes(raw, width))
	}
	return writeLengthPrefixed(w, payload)
}
