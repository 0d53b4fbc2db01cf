// Package emit provides the per-type cell encoders (CellEmitter, spec
// §4.4): one text encoder and one PG-binary encoder per supported FITS
// scalar type, sharing a common shape so the row driver stays
// type-agnostic (spec §9, "Per-type emitter duplication").
package emit

// QuoteMode selects how STRING cells are wrapped for text output.
// Exactly one mode is active for a given run (spec §4.4: "Modes are
// mutually exclusive per run").
type QuoteMode int

const (
	// QuotePassthrough copies the (optionally trimmed) string as-is.
	QuotePassthrough QuoteMode = iota
	// QuoteWrap surrounds the string with the active quote character.
	QuoteWrap
	// QuoteWrapEscape surrounds the string with the active quote
	// character and doubles any embedded occurrences of it.
	QuoteWrapEscape
)

// NumericStyle selects how NaN/Infinity are spelled for floating-point
// text output (spec §4.4).
type NumericStyle int

const (
	// StylePostgres spells NaN as the bare literal NaN and infinities
	// as Infinity / -Infinity, unquoted.
	StylePostgres NumericStyle = iota
	// StyleMySQLSQLite spells NaN as 'NaN' and infinities as
	// 'Infinity' / '-Infinity', single-quoted.
	StyleMySQLSQLite
	// StyleGeneric spells NaN using the plain %f verb (every other
	// output format); infinities are still Infinity / -Infinity,
	// unquoted.
	StyleGeneric
)

// TextOptions configures CellEmitter's text encoding path. One
// TextOptions is built per run from RunConfig and reused for every
// cell.
type TextOptions struct {
	// Strip trims leading/trailing spaces from STRING cells. Default
	// true; --nostrip sets this false.
	Strip bool
	// Quote selects how STRING cells are wrapped.
	Quote QuoteMode
	// QuoteChar is the character QuoteWrap/QuoteWrapEscape surround
	// the string with ('"' by default, '\'' with --singlequote).
	QuoteChar byte
	// Delimiter separates array elements within one cell, and (outside
	// this package) separates cells within a row.
	Delimiter byte
	// IPAC right-pads every formatted cell to the column's display
	// width.
	IPAC bool
	// SQLArrayBrackets wraps a non-exploded array cell in "{...}"
	// unquoted (true, for SQL dialects) instead of "(...)" (false, for
	// generic delimited output), which is surrounded by QuoteChar unless
	// Quote is QuotePassthrough.
	SQLArrayBrackets bool
	// Style controls NaN/Infinity spelling.
	Style NumericStyle
}
