// Package fileloop orchestrates one input file at a time: open, read
// schema, validate it against the bundle's established schema, stream
// rows, and close, while deciding preamble/trailer emission from this
// file's position in the bundle (spec §4.7).
package fileloop

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fits2db/internal/config"
	"fits2db/internal/fitsio"
	"fits2db/internal/rowdriver"
	"fits2db/internal/schema"
	"fits2db/internal/schemareader"
	"fits2db/internal/stream"
)

// Loop drives an entire run over Files, writing to W.
type Loop struct {
	Files  []string
	Cfg    *config.RunConfig
	State  *config.RunState
	Opener fitsio.Opener
	W      *bufio.Writer
	ErrLog io.Writer // typically os.Stderr

	// NewWriter, when set, is called once at the start of every bundle
	// with that bundle's 0-based sequence number (across the whole run)
	// and the path of its first file; it must return a fresh writer for
	// that bundle's preamble/rows/trailer and a func that flushes and
	// closes it. This implements the derived-per-bundle-output-file case
	// of spec §4.7 ("derive an output path ... <base>[<nnn>].<ext>"),
	// used when the caller has no single explicit -o target. When nil,
	// Loop writes the whole run to W (the common "pipe to one client"
	// case, including single-file-to-stdout).
	NewWriter func(bundleSeq int, firstFile string) (*bufio.Writer, func() error, error)

	bundleSchema *schema.Input
	bundleOut    *schema.Output
	binary       bool // effective binary mode, possibly disabled per DisableBinaryIfUnsupported
}

// Run processes every file in order, emitting one continuous stream per
// bundle (spec §4.6, §4.7): to L.W when NewWriter is nil, or to a fresh
// writer obtained from NewWriter at each bundle boundary otherwise.
func (l *Loop) Run() error {
	if l.ErrLog == nil {
		l.ErrLog = os.Stderr
	}
	bundleIndex := 0
	bundleSeq := 0
	bundleSize := l.Cfg.Bundle
	if bundleSize < 1 {
		bundleSize = 1
	}

	closeCurrent := func() error { return nil }

	for fileIndex, path := range l.Files {
		pos := stream.Position{
			BundleIndex: bundleIndex,
			FileIndex:   fileIndex,
			TotalFiles:  len(l.Files),
			BundleSize:  bundleSize,
			Concat:      l.Cfg.Concat,
		}

		if l.NewWriter != nil && pos.IsFirstInBundle() {
			if err := closeCurrent(); err != nil {
				fmt.Fprintf(l.ErrLog, "fits2db: %v\n", err)
			}
			w, closeW, err := l.NewWriter(bundleSeq, path)
			if err != nil {
				fmt.Fprintf(l.ErrLog, "fits2db: %s: %v\n", path, err)
				closeCurrent = func() error { return nil }
			} else {
				l.W = w
				closeCurrent = closeW
			}
			bundleSeq++
		}

		if err := l.processFile(path, pos); err != nil {
			fmt.Fprintf(l.ErrLog, "fits2db: %s: %v\n", path, err)
		}

		bundleIndex++
		if pos.IsLastInBundle() {
			bundleIndex = 0
			l.bundleSchema = nil
			l.bundleOut = nil
		}
	}

	if l.NewWriter != nil {
		return closeCurrent()
	}
	return l.W.Flush()
}

func (l *Loop) processFile(path string, pos stream.Position) error {
	r, closeFile, err := openInput(path)
	if err != nil {
		return err
	}
	defer closeFile()

	file, err := l.Opener.Open(r)
	if err != nil {
		return fmt.Errorf("not a FITS file, skipping: %w", err)
	}
	defer file.Close()

	table, err := l.selectTable(file)
	if err != nil {
		return err
	}
	if !table.IsSimple() {
		return fmt.Errorf("SIMPLE != T, skipping")
	}

	out, err := l.resolveSchema(table, path)
	if err != nil {
		return err
	}

	if pos.IsFirstInBundle() {
		l.binary = l.Cfg.Binary
		if l.binary && stream.DisableBinaryIfUnsupported(out) {
			fmt.Fprintf(l.ErrLog, "fits2db: %s: array column of non-string type present, disabling --binary\n", path)
			l.binary = false
		}
	}
	effectiveCfg := *l.Cfg
	effectiveCfg.Binary = l.binary

	tableName := l.tableName(path)
	if err := stream.Preamble(l.W, &effectiveCfg, out, tableName, pos); err != nil {
		return err
	}

	if !l.Cfg.NoLoad {
		text := stream.DeriveTextOptions(&effectiveCfg)
		chunk := l.Cfg.Chunk
		if chunk <= 0 {
			chunk = int(table.OptimalChunkRows())
			if chunk < 1 {
				chunk = 1
			}
		}

		driver := rowdriver.NewRowDriver(table, out, &effectiveCfg, l.State, text, l.W, pos.EmitsTrailer())
		if err := driver.Run(int64(chunk)); err != nil {
			return err
		}
	}

	return stream.Trailer(l.W, &effectiveCfg, pos)
}

// resolveSchema reads path's table schema and, for every file after the
// bundle's first, validates it against the schema established by that
// first file (spec §3, §4.2 bundle schema-match invariant), reusing the
// bundle's already-built Output layout instead of rebuilding it.
func (l *Loop) resolveSchema(table fitsio.Table, path string) (*schema.Output, error) {
	opts := schemareader.Options{Explode: l.Cfg.Explode, Quote: l.Cfg.Quote != 0}
	in, err := schemareader.Read(table, 1, table.NumCols(), opts)
	if err != nil {
		return nil, err
	}

	if l.bundleSchema != nil {
		if err := l.bundleSchema.ValidateAgainst(in); err != nil {
			return nil, fmt.Errorf("schema mismatch with bundle, skipping: %w", err)
		}
		return l.bundleOut, nil
	}

	out, err := schema.Build(in, schema.BuildOptions{
		Explode:   l.Cfg.Explode,
		AddColumn: l.Cfg.AddColumn,
		SidColumn: l.Cfg.SidColumn,
		RidColumn: l.Cfg.RidColumn,
	})
	if err != nil {
		return nil, err
	}
	l.bundleSchema = in
	l.bundleOut = out
	return out, nil
}

func (l *Loop) selectTable(file fitsio.File) (fitsio.Table, error) {
	switch {
	case l.Cfg.ExtNum != 0:
		return file.TableByNumber(l.Cfg.ExtNum)
	case l.Cfg.ExtName != "":
		return file.TableByName(l.Cfg.ExtName)
	default:
		return file.FirstTable()
	}
}

func (l *Loop) tableName(path string) string {
	if l.Cfg.Table != "" {
		return l.Cfg.Table
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// openInput opens path for reading, transparently decompressing a .gz
// suffix into a seekable buffer since fitsio.Opener requires
// io.ReadSeeker (spec §4.7: "gzip-compressed FITS file").
func openInput(path string) (io.ReadSeeker, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, func() { f.Close() }, nil
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, nil, fmt.Errorf("gzip: read: %w", err)
	}
	return bytes.NewReader(data), func() {}, nil
}
