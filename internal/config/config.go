// Package config replaces the source implementation's global mutable
// state (serial counter, PRNG, delimiter, quote character, option
// flags) with an immutable RunConfig passed by reference plus a mutable
// RunState holding the serial counter and PRNG (spec §9, design note
// "Global mutable state").
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// Format identifies the target output encoding (spec §6 File formats).
type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatBSV      Format = "bsv"
	FormatASV      Format = "asv"
	FormatIPAC     Format = "ipac"
	FormatPostgres Format = "postgres"
	FormatMySQL    Format = "mysql"
	FormatSQLite   Format = "sqlite"
)

// IsSQL reports whether f is one of the three database dialects (as
// opposed to a plain delimited/IPAC text format).
func (f Format) IsSQL() bool {
	switch f {
	case FormatPostgres, FormatMySQL, FormatSQLite:
		return true
	default:
		return false
	}
}

// OutputExt returns the file extension FileLoop uses when deriving a
// per-bundle output path (spec §4.7, §6): the format's own name for
// plain delimited/IPAC formats, "sql" for every database dialect.
func (f Format) OutputExt() string {
	if f.IsSQL() {
		return "sql"
	}
	return string(f)
}

// delimiterFor returns the cell delimiter implied by a plain delimited
// format (spec §6: asv/bsv/csv/tsv).
func delimiterFor(f Format) byte {
	switch f {
	case FormatCSV:
		return ','
	case FormatTSV:
		return '\t'
	case FormatBSV:
		return '|'
	case FormatASV:
		return 0x1F // ASCII unit separator, the conventional ASV delimiter
	default:
		return ','
	}
}

// RunConfig is the immutable configuration for one run, built once from
// parsed CLI flags (and an optional TOML file, see SPEC_FULL.md §6.1).
type RunConfig struct {
	Format Format

	Delimiter byte
	Quote     rune // 0 means "no quoting" (--noquote)
	Strip     bool // true unless --nostrip
	Explode   bool // --explode/-X
	NoHeader  bool // --noheader/-H

	Binary bool // --binary/-B, postgres only
	OID    bool // --oid/-O; accepted, always a no-op (spec §9 Open Question 1)

	Bundle int // --bundle/-b, forced to 1 when Binary is set
	Chunk  int // --chunk/-c, 0 means "use the reader's optimal hint"

	Concat bool // --concat/-C

	Table  string
	DBName string

	Drop     bool
	Create   bool
	Truncate bool

	SidColumn string
	RidColumn string
	AddColumn string

	ExtNum  int    // --extnum/-e, 0 means "unset"
	ExtName string // --extname/-E

	RowRange string // --rowrange/-r; parsed but rejected, spec §9 Open Question 2

	Select string // --select/-s, opaque FITS filter expression, passed through

	Verbose bool
	Debug   bool
	NoOp    bool
	NoLoad  bool // --noload/-Z
}

// ErrConflictingExtension is returned by Validate when both --extnum
// and --extname are set. main maps it to exit code 3 (spec §6).
var ErrConflictingExtension = errors.New("configuration: --extnum and --extname are mutually exclusive")

// Validate checks the mutual exclusions and implications named in
// spec §6.
func (c *RunConfig) Validate() error {
	if c.ExtNum != 0 && c.ExtName != "" {
		return ErrConflictingExtension
	}
	if c.RowRange != "" {
		return fmt.Errorf("configuration: --rowrange is not implemented")
	}
	if c.Drop && !c.Create {
		c.Create = true
	}
	if c.Binary {
		c.Bundle = 1
	}
	return nil
}

// Default returns a RunConfig with the documented CLI defaults applied
// (spec §4.2 quoting default, §6 dialect-implied delimiter/quoting).
func Default() *RunConfig {
	return &RunConfig{
		Format:    FormatCSV,
		Delimiter: ',',
		Quote:     '"',
		Strip:     true,
		Bundle:    1,
		Chunk:     0,
	}
}

// ApplySQLDialectDefaults sets the delimiter/quoting implied by
// --sql=postgres|mysql|sqlite (spec §6): postgres selects tab and
// disables quoting; mysql selects comma with double-quoting; sqlite
// preserves whatever delimiter is already active.
func (c *RunConfig) ApplySQLDialectDefaults() {
	switch c.Format {
	case FormatPostgres:
		c.Delimiter = '\t'
		c.Quote = 0
	case FormatMySQL:
		c.Delimiter = ','
		c.Quote = '"'
	case FormatSQLite:
		// delimiter and quoting stay whatever they already were.
	}
}

// ApplyDelimitedFormatDefaults sets the delimiter implied by a plain
// --csv/--tsv/--bsv/--asv flag.
func (c *RunConfig) ApplyDelimitedFormatDefaults() {
	switch c.Format {
	case FormatCSV, FormatTSV, FormatBSV, FormatASV:
		c.Delimiter = delimiterFor(c.Format)
	}
}

// ParseFormat maps a --sql= value (case-insensitive) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return FormatPostgres, nil
	case "mysql":
		return FormatMySQL, nil
	case "sqlite":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("configuration: unsupported --sql dialect %q", s)
	}
}

// RunState holds the run's mutable, process-wide state: the serial
// column counter (strictly increasing and contiguous across every row
// of the run, spec §8) and the PRNG used for the rid column (seeded
// once at startup, spec §5).
type RunState struct {
	serial int64
	rng    *rand.Rand
}

// NewRunState creates a RunState with its PRNG seeded from seed. The
// fits2db command seeds this once at process start from wall-clock time
// (spec §5); tests
// pass a fixed seed for determinism.
func NewRunState(seed int64) *RunState {
	return &RunState{rng: rand.New(rand.NewSource(seed))}
}

// NextSerial returns the next value of the shared serial counter and
// advances it. The first call returns 0 (spec §3: "sid ... starting at
// 0, monotonically increasing across the entire run").
func (s *RunState) NextSerial() int64 {
	v := s.serial
	s.serial++
	return v
}

// NextRandom returns a value uniformly distributed in [0, 100) for the
// rid column (spec §3).
func (s *RunState) NextRandom() float64 {
	return s.rng.Float64() * 100
}
