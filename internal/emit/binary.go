package emit

import (
	"bufio"
	"encoding/binary"
	"fmt"

	"fits2db/internal/schema"
)

// writeLengthPrefixed writes a 4-byte big-endian length followed by
// payload, the common shape of every PG-binary field (spec §4.4).
func writeLengthPrefixed(w *bufio.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// binaryStringPayload returns the bytes a STRING cell contributes to a
// PG-binary field: the (optionally trimmed) raw bytes, unswapped (ASCII
// text has no byte order).
func binaryStringPayload(raw []byte, strip bool) []byte {
	if !strip {
		return raw
	}
	return []byte(trimSpaceBytes(raw))
}

func trimSpaceBytes(raw []byte) []byte {
	start, end := 0, len(raw)
	for start < end && raw[start] == ' ' {
		start++
	}
	for end > start && raw[end-1] == ' ' {
		end--
	}
	return raw[start:end]
}

// logicalBinaryPayload encodes a LOGICAL element as the 2-byte
// big-endian value 0 or 1 (spec §4.4), unlike its 4-byte-length-prefix
// peers which carry their natural scalar width.
func logicalBinaryPayload(raw []byte) []byte {
	var buf [2]byte
	if decodeLogical(raw) {
		buf[1] = 1
	}
	return buf[:]
}

// binaryScalarPayload returns the big-endian wire bytes for one scalar
// element. Non-logical scalars are already big-endian on disk (spec
// §4.1) so no swap is applied.
func binaryScalarPayload(t schema.CellType, raw []byte) ([]byte, error) {
	if t == schema.Logical {
		return logicalBinaryPayload(raw), nil
	}
	width := t.ScalarWidth()
	if len(raw) < width {
		return nil, fmt.Errorf("emit: short scalar buffer for type %q", t)
	}
	return bigEndianBytes(raw, width), nil
}
