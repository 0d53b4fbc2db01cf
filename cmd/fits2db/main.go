// Package main contains the cli implementation of fits2db. It uses the
// cobra package for cli tool implementation.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fits2db/internal/config"
	"fits2db/internal/fileloop"
	"fits2db/internal/fitsio"
)

// errNoInput is returned by run when no input files were given on the
// command line or via --input; main maps it to exit code 2 (spec §6).
var errNoInput = errors.New("fits2db: no input files given")

// errOutputOpen marks an error from openOutput; main maps it to exit
// code 3 alongside config.ErrConflictingExtension (spec §6: "conflicting
// extension selectors or output-open failure").
var errOutputOpen = errors.New("fits2db: output open failed")

// nowSeed seeds the run's PRNG (RunState.NextRandom, used for the rid
// column) from wall-clock time, matching the source implementation's
// once-per-process seeding (spec §5).
func nowSeed() int64 {
	return time.Now().UnixNano()
}

type runFlags struct {
	debug   bool
	verbose bool
	noop    bool

	bundle  int
	chunk   int
	extnum  int
	extname string

	input  string
	output string

	rowrange   string
	selectExpr string

	concat      bool
	noheader    bool
	nostrip     bool
	noquote     bool
	singlequote bool
	explode     bool

	csv, tsv, bsv, asv, ipac bool

	binary bool
	oid    bool
	table  string
	noload bool

	sql      string
	drop     bool
	create   bool
	truncate bool
	sid      string
	rid      string
	add      string
	dbname   string

	configPath string
}

func main() {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "fits2db [flags] FILE...",
		Short: "Convert FITS binary tables into relational-database load streams",
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args, flags)
		},
	}

	bindFlags(cmd, flags)

	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned from run to the exit code spec §6
// documents: 2 for no input files, 3 for conflicting extension
// selectors or a failure opening the output, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoInput):
		return 2
	case errors.Is(err, config.ErrConflictingExtension), errors.Is(err, errOutputOpen):
		return 3
	default:
		return 1
	}
}

func bindFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()

	fl.BoolVarP(&f.debug, "debug", "d", false, "Enable debug diagnostics")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose progress output")
	fl.BoolVarP(&f.noop, "noop", "n", false, "Parse and validate but write nothing")

	fl.IntVarP(&f.bundle, "bundle", "b", 0, "Number of files per output bundle")
	fl.IntVarP(&f.chunk, "chunk", "c", 0, "Row chunk size (0: reader's optimal hint)")
	fl.IntVarP(&f.extnum, "extnum", "e", 0, "Extension number to read, mutually exclusive with --extname")
	fl.StringVarP(&f.extname, "extname", "E", "", "Extension name to read, mutually exclusive with --extnum")

	fl.StringVarP(&f.input, "input", "i", "", "Additional input path, alternative to positional arguments")
	fl.StringVarP(&f.output, "output", "o", "", "Output path (default: stdout for a single input, one derived file per bundle for several)")

	fl.StringVarP(&f.rowrange, "rowrange", "r", "", "Row range (not implemented)")
	fl.StringVarP(&f.selectExpr, "select", "s", "", "FITS row filter expression, passed through")

	fl.BoolVarP(&f.concat, "concat", "C", false, "Defer the trailer to the last file of the whole run")
	fl.BoolVarP(&f.noheader, "noheader", "H", false, "Suppress the column-name header row")
	fl.BoolVarP(&f.nostrip, "nostrip", "N", false, "Do not trim whitespace from STRING cells")
	fl.BoolVarP(&f.noquote, "noquote", "Q", false, "Disable quoting of STRING cells")
	fl.BoolVarP(&f.singlequote, "singlequote", "S", false, "Quote STRING cells with ' instead of \"")
	fl.BoolVarP(&f.explode, "explode", "X", false, "Explode array columns into scalar columns")

	fl.BoolVar(&f.csv, "csv", false, "Comma-separated output")
	fl.BoolVar(&f.tsv, "tsv", false, "Tab-separated output")
	fl.BoolVar(&f.bsv, "bsv", false, "Bar-separated output")
	fl.BoolVar(&f.asv, "asv", false, "ASCII-unit-separated output")
	fl.BoolVar(&f.ipac, "ipac", false, "IPAC fixed-width table output")

	fl.BoolVarP(&f.binary, "binary", "B", false, "PostgreSQL COPY ... WITH BINARY output")
	fl.BoolVarP(&f.oid, "oid", "O", false, "Accepted for compatibility; always a no-op")
	fl.StringVarP(&f.table, "table", "t", "", "Target table name (default: derived from the input file name)")
	fl.BoolVarP(&f.noload, "noload", "Z", false, "Write schema/preamble only, no row data")

	fl.StringVar(&f.sql, "sql", "", "SQL dialect: postgres, mysql, or sqlite")
	fl.BoolVar(&f.drop, "drop", false, "Emit DROP TABLE before CREATE")
	fl.BoolVar(&f.create, "create", false, "Emit CREATE TABLE")
	fl.BoolVar(&f.truncate, "truncate", false, "Emit TRUNCATE TABLE")
	fl.StringVar(&f.sid, "sid", "", "Name of the synthetic serial-id column")
	fl.StringVar(&f.rid, "rid", "", "Name of the synthetic random-id column")
	fl.StringVar(&f.add, "add", "", "Name of the synthetic constant column")
	fl.StringVar(&f.dbname, "dbname", "", "Database name, mysql only")

	fl.StringVar(&f.configPath, "config", "", "TOML file of default flag values")
}

func run(args []string, f *runFlags) error {
	cfg, err := buildConfig(f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	files := args
	if f.input != "" {
		files = append(files, f.input)
	}
	if len(files) == 0 {
		return errNoInput
	}

	loop := &fileloop.Loop{
		Files:  files,
		Cfg:    cfg,
		State:  config.NewRunState(nowSeed()),
		Opener: fitsio.AstrogoOpener{},
		ErrLog: os.Stderr,
	}

	// With no explicit -o and more than one input, each output bundle
	// lands in its own derived file instead of being multiplexed onto
	// stdout (spec §4.7: "derive an output path ... <base>[<nnn>].<ext>",
	// "stdout if the single input writes to stdout").
	if f.output == "" && len(files) > 1 {
		loop.NewWriter = bundleWriter(files, cfg)
		return loop.Run()
	}

	out, closeOut, err := openOutput(f.output)
	if err != nil {
		return err
	}
	defer closeOut()
	loop.W = bufio.NewWriter(out)
	return loop.Run()
}

// bundleWriter returns a fileloop.Loop.NewWriter implementation that
// creates one output file per bundle, named from the bundle's first
// file's basename and the active format's extension, with a zero-
// padded sequence number when the run spans more than one bundle
// (spec §4.7).
func bundleWriter(files []string, cfg *config.RunConfig) func(int, string) (*bufio.Writer, func() error, error) {
	bundleSize := cfg.Bundle
	if bundleSize < 1 {
		bundleSize = 1
	}
	numBundles := (len(files) + bundleSize - 1) / bundleSize
	if cfg.Concat {
		numBundles = 1
	}
	ext := cfg.Format.OutputExt()

	return func(bundleSeq int, firstFile string) (*bufio.Writer, func() error, error) {
		base := strings.TrimSuffix(filepath.Base(firstFile), ".gz")
		base = strings.TrimSuffix(base, filepath.Ext(base))
		name := fmt.Sprintf("%s.%s", base, ext)
		if numBundles > 1 {
			name = fmt.Sprintf("%s%03d.%s", base, bundleSeq, ext)
		}
		f, err := os.Create(name)
		if err != nil {
			return nil, nil, fmt.Errorf("fits2db: create %q: %w", name, err)
		}
		w := bufio.NewWriter(f)
		return w, func() error {
			if err := w.Flush(); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		}, nil
	}
}

func buildConfig(f *runFlags) (*config.RunConfig, error) {
	cfg := config.Default()

	if f.configPath != "" {
		fd, err := config.LoadFileDefaults(f.configPath)
		if err != nil {
			return nil, err
		}
		fd.ApplyTo(cfg)
	}

	cfg.Verbose = f.verbose
	cfg.Debug = f.debug
	cfg.NoOp = f.noop
	cfg.NoLoad = f.noload

	if f.bundle != 0 {
		cfg.Bundle = f.bundle
	}
	if f.chunk != 0 {
		cfg.Chunk = f.chunk
	}
	cfg.ExtNum = f.extnum
	cfg.ExtName = f.extname
	cfg.RowRange = f.rowrange
	cfg.Select = f.selectExpr

	cfg.Concat = f.concat
	cfg.NoHeader = f.noheader
	cfg.Strip = !f.nostrip
	cfg.Explode = f.explode || cfg.Explode

	cfg.Binary = f.binary
	cfg.OID = f.oid
	if f.table != "" {
		cfg.Table = f.table
	}
	if f.dbname != "" {
		cfg.DBName = f.dbname
	}
	cfg.Drop = f.drop || cfg.Drop
	cfg.Create = f.create || cfg.Create
	cfg.Truncate = f.truncate || cfg.Truncate
	if f.sid != "" {
		cfg.SidColumn = f.sid
	}
	if f.rid != "" {
		cfg.RidColumn = f.rid
	}
	if f.add != "" {
		cfg.AddColumn = f.add
	}

	if err := applyFormat(cfg, f); err != nil {
		return nil, err
	}

	if f.singlequote {
		cfg.Quote = '\''
	}
	if f.noquote {
		cfg.Quote = 0
	}

	return cfg, nil
}

func applyFormat(cfg *config.RunConfig, f *runFlags) error {
	switch {
	case f.sql != "":
		format, err := config.ParseFormat(f.sql)
		if err != nil {
			return err
		}
		cfg.Format = format
		cfg.ApplySQLDialectDefaults()
	case f.csv:
		cfg.Format = config.FormatCSV
	case f.tsv:
		cfg.Format = config.FormatTSV
	case f.bsv:
		cfg.Format = config.FormatBSV
	case f.asv:
		cfg.Format = config.FormatASV
	case f.ipac:
		cfg.Format = config.FormatIPAC
	default:
		return nil
	}
	if !f.ipac && f.sql == "" {
		cfg.ApplyDelimitedFormatDefaults()
	}
	return nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create %q: %v", errOutputOpen, path, err)
	}
	return f, func() { f.Close() }, nil
}
