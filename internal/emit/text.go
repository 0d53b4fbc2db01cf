package emit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fits2db/internal/schema"
)

// formatScalar renders one non-string scalar element's raw bytes as
// text, per spec §4.4.
func formatScalar(t schema.CellType, raw []byte, opts TextOptions) (string, error) {
	switch t {
	case schema.Logical:
		if decodeLogical(raw) {
			return "1", nil
		}
		return "0", nil
	case schema.Byte:
		return strconv.FormatUint(uint64(decodeByte(raw)), 10), nil
	case schema.SByte:
		return strconv.FormatInt(int64(decodeSByte(raw)), 10), nil
	case schema.Short:
		return strconv.FormatInt(int64(decodeShort(raw)), 10), nil
	case schema.UShort:
		return strconv.FormatUint(uint64(decodeUShort(raw)), 10), nil
	case schema.Int, schema.Int32:
		return strconv.FormatInt(int64(decodeInt(raw)), 10), nil
	case schema.UInt:
		return strconv.FormatUint(uint64(decodeUInt(raw)), 10), nil
	case schema.LongLong:
		return strconv.FormatInt(decodeLongLong(raw), 10), nil
	case schema.Float:
		return formatFloat(float64(decodeFloat(raw)), opts.Style), nil
	case schema.Double:
		return formatDoublePrecise(decodeDouble(raw), opts.Style), nil
	default:
		return "", fmt.Errorf("emit: unsupported column type %q", t)
	}
}

func formatFloat(v float64, style NumericStyle) string {
	if s, ok := formatSpecial(v, style); ok {
		return s
	}
	return fmt.Sprintf("%f", v)
}

func formatDoublePrecise(v float64, style NumericStyle) string {
	if s, ok := formatSpecial(v, style); ok {
		return s
	}
	return fmt.Sprintf("%.16f", v)
}

// formatSpecial handles NaN/Infinity spelling (spec §4.4); ok is false
// for ordinary finite values.
func formatSpecial(v float64, style NumericStyle) (string, bool) {
	switch {
	case math.IsNaN(v):
		switch style {
		case StylePostgres:
			return "NaN", true
		case StyleMySQLSQLite:
			return "'NaN'", true
		default:
			return fmt.Sprintf("%f", v), true
		}
	case math.IsInf(v, 1):
		return wrapInfinity("Infinity", style), true
	case math.IsInf(v, -1):
		return wrapInfinity("-Infinity", style), true
	default:
		return "", false
	}
}

func wrapInfinity(s string, style NumericStyle) string {
	if style == StyleMySQLSQLite {
		return "'" + s + "'"
	}
	return s
}

// formatString renders a STRING cell's raw bytes as text: trim, then
// wrap per the active QuoteMode (spec §4.4).
func formatString(raw []byte, opts TextOptions) string {
	s := string(raw)
	if opts.Strip {
		s = strings.TrimSpace(s)
	}
	switch opts.Quote {
	case QuoteWrap:
		return wrapQuote(s, opts.QuoteChar)
	case QuoteWrapEscape:
		return wrapQuoteEscape(s, opts.QuoteChar)
	default:
		return s
	}
}

func wrapQuote(s string, q byte) string {
	return string(q) + s + string(q)
}

func wrapQuoteEscape(s string, q byte) string {
	doubled := strings.ReplaceAll(s, string(q), string(q)+string(q))
	return string(q) + doubled + string(q)
}
