package emit

import (
	"encoding/binary"
	"fmt"
	"math"

	"fits2db/internal/byteorder"
	"fits2db/internal/schema"
)

// scalarSlice returns the byte slice for the element at (row, col) of a
// non-string column's cell, where row/col are 1-based; row==0/col==0
// means "the whole cell" (used by the non-exploded, whole-column path).
func scalarSlice(c *schema.Column, cell []byte, row, col int) ([]byte, error) {
	width := c.Type.ScalarWidth()
	if row == 0 && col == 0 {
		return cell, nil
	}
	if row < 1 {
		row = 1
	}
	if col < 1 {
		col = 1
	}
	idx := (row-1)*c.NCols + (col - 1)
	start := idx * width
	end := start + width
	if end > len(cell) {
		return nil, fmt.Errorf("emit: element (%d,%d) out of range for column %q", row, col, c.Name)
	}
	return cell[start:end], nil
}

// hostOrder returns a copy of raw swapped into host byte order, per
// spec §4.1 ("For text output, scalars must be swapped to host order
// before formatting").
func hostOrder(raw []byte, width int) []byte {
	buf := append([]byte(nil), raw...)
	byteorder.ToHost(buf, width)
	return buf
}

func decodeLogical(raw []byte) bool {
	return raw[0] == 'T' || raw[0] == 't'
}

func decodeByte(raw []byte) uint8 {
	return raw[0]
}

func decodeSByte(raw []byte) int8 {
	return int8(raw[0])
}

func decodeShort(raw []byte) int16 {
	h := hostOrder(raw, 2)
	return int16(binary.NativeEndian.Uint16(h))
}

func decodeUShort(raw []byte) uint16 {
	h := hostOrder(raw, 2)
	return binary.NativeEndian.Uint16(h)
}

func decodeInt(raw []byte) int32 {
	h := hostOrder(raw, 4)
	return int32(binary.NativeEndian.Uint32(h))
}

func decodeUInt(raw []byte) uint32 {
	h := hostOrder(raw, 4)
	return binary.NativeEndian.Uint32(h)
}

func decodeLongLong(raw []byte) int64 {
	h := hostOrder(raw, 8)
	return int64(binary.NativeEndian.Uint64(h))
}

func decodeFloat(raw []byte) float32 {
	h := hostOrder(raw, 4)
	return math.Float32frombits(binary.NativeEndian.Uint32(h))
}

func decodeDouble(raw []byte) float64 {
	h := hostOrder(raw, 8)
	return math.Float64frombits(binary.NativeEndian.Uint64(h))
}

// bigEndianBytes returns a width-byte big-endian encoding of raw, which
// is already in FITS on-disk (big-endian) order, so no swap is needed
// (spec §4.1: PG-binary "must end up big-endian on the wire", which raw
// already is).
func bigEndianBytes(raw []byte, width int) []byte {
	return raw[:width]
}
