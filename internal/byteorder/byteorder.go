// Package byteorder detects host endianness and swaps FITS on-disk byte
// groups (which are always big-endian) into or out of host order in place.
package byteorder

import "encoding/binary"

// HostLittleEndian reports whether the current process stores multi-byte
// scalars in little-endian order, the opposite of FITS's big-endian layout.
var HostLittleEndian = hostIsLittleEndian()

func hostIsLittleEndian() bool {
	var x uint16 = 1
	b := make([]byte, 2)
	binary.NativeEndian.PutUint16(b, x)
	return b[0] == 1
}

// Swap2 swaps adjacent byte pairs of buf in place. A trailing odd byte, if
// any, is left untouched.
func Swap2(buf []byte) {
	n := len(buf) - (len(buf) % 2)
	for i := 0; i < n; i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// Swap4 swaps groups of four bytes of buf in place. Trailing bytes that
// don't form a complete group of four are left untouched.
func Swap4(buf []byte) {
	n := len(buf) - (len(buf) % 4)
	for i := 0; i < n; i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = buf[i+3], buf[i+2], buf[i+1], buf[i]
	}
}

// Swap8 swaps groups of eight bytes of buf in place. Trailing bytes that
// don't form a complete group of eight are left untouched.
func Swap8(buf []byte) {
	n := len(buf) - (len(buf) % 8)
	for i := 0; i < n; i += 8 {
		buf[i], buf[i+1], buf[i+2], buf[i+3], buf[i+4], buf[i+5], buf[i+6], buf[i+7] =
			buf[i+7], buf[i+6], buf[i+5], buf[i+4], buf[i+3], buf[i+2], buf[i+1], buf[i]
	}
}

// SwapGroups swaps buf in place using groups of the given element width.
// Widths other than 2, 4, and 8 are no-ops (single-byte types never need
// swapping).
func SwapGroups(buf []byte, width int) {
	switch width {
	case 2:
		Swap2(buf)
	case 4:
		Swap4(buf)
	case 8:
		Swap8(buf)
	}
}

// ToHost swaps buf from FITS big-endian order into host order in place,
// when and only when the host is little-endian.
func ToHost(buf []byte, width int) {
	if HostLittleEndian {
		SwapGroups(buf, width)
	}
}

// ToBigEndian swaps buf from host order into big-endian order in place,
// when and only when the host is little-endian. Used by PG-binary
// encoding, which must always write big-endian regardless of host order.
func ToBigEndian(buf []byte, width int) {
	if HostLittleEndian {
		SwapGroups(buf, width)
	}
}
