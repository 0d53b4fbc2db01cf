package emit

import (
	"bufio"
	"encoding/binary"
	"math"

	"fits2db/internal/schema"
)

// EncodeSyntheticBinary writes a synthetic column's PG-binary field: a
// 4-byte length followed by a 4-byte integer for add/sid, or an 8-byte
// double for rid (spec §4.6: "synthetic columns ... each length-prefixed
// in PG-binary mode").
func EncodeSyntheticBinary(w *bufio.Writer, kind schema.SyntheticKind, value float64) error {
	if kind == schema.RidColumn {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(value))
		return writeLengthPrefixed(w, buf)
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(int32(value)))
	return writeLengthPrefixed(w, buf)
}
