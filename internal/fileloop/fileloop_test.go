package fileloop

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fits2db/internal/config"
	"fits2db/internal/fitsio"
	"fits2db/internal/fitsio/fitsiotest"
)

// fakeOpener ignores the file contents and always returns the same
// in-memory table, standing in for fitsio.AstrogoOpener so Loop can be
// exercised without a real FITS file on disk (spec §1 external
// collaborator boundary).
type fakeOpener struct {
	table *fitsiotest.Table
}

func (o fakeOpener) Open(r io.ReadSeeker) (fitsio.File, error) {
	return &fitsiotest.File{Default: o.table}, nil
}

func intTable(values ...int32) *fitsiotest.Table {
	buf := make([]byte, 0, 4*len(values))
	for _, v := range values {
		buf = append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return &fitsiotest.Table{
		Simple: true,
		Cols: []fitsio.ColumnMeta{
			{Ordinal: 1, Name: "flux", TypeCode: 'J', Repeat: 1, Width: 4, DisplayWidth: 10},
		},
		Rows:     int64(len(values)),
		RowBytes: buf,
	}
}

// placeholderFiles moves the test into a fresh temporary directory and
// creates an empty file for each name there: Loop opens every input path
// before handing the reader to the (fake) Opener.
func placeholderFiles(t *testing.T, names ...string) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range names {
		require.NoError(t, os.WriteFile(name, nil, 0o644))
	}
}

func TestLoopWritesHeaderAndRowsForCSV(t *testing.T) {
	placeholderFiles(t, "a.fits")
	table := intTable(1, 2, 3)
	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	cfg := config.Default()
	l := &Loop{
		Files:  []string{"a.fits"},
		Cfg:    cfg,
		State:  config.NewRunState(1),
		Opener: fakeOpener{table: table},
		W:      w,
	}
	require.NoError(t, l.Run())

	lines := out.String()
	assert.Equal(t, "flux\n1\n2\n3\n", lines)
}

func TestLoopSkipsFileOnSchemaMismatchWithinBundle(t *testing.T) {
	placeholderFiles(t, "a.fits", "b.fits")
	first := intTable(1)
	second := &fitsiotest.Table{
		Simple: true,
		Cols: []fitsio.ColumnMeta{
			{Ordinal: 1, Name: "flux", TypeCode: 'D', Repeat: 1, Width: 8},
		},
		Rows:     1,
		RowBytes: make([]byte, 8),
	}

	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	var errLog bytes.Buffer

	cfg := config.Default()
	cfg.Bundle = 2
	l := &Loop{
		Files:  []string{"a.fits", "b.fits"},
		Cfg:    cfg,
		State:  config.NewRunState(1),
		Opener: &twoTableOpener{first, second},
		W:      w,
		ErrLog: &errLog,
	}
	require.NoError(t, l.Run())
	assert.Contains(t, errLog.String(), "schema mismatch")
	assert.Equal(t, "flux\n1\n", out.String())
}

// twoTableOpener returns its tables in sequence, one per Open call
// (one call per file), so the bundle schema-mismatch path can be
// exercised across two files.
type twoTableOpener struct {
	first, second *fitsiotest.Table
}

func (o *twoTableOpener) Open(r io.ReadSeeker) (fitsio.File, error) {
	t := o.first
	if t == nil {
		t = o.second
	} else {
		o.first = nil
	}
	return &fitsiotest.File{Default: t}, nil
}

// TestLoopNewWriterPerBundle exercises the derived-per-bundle-output
// path (spec §4.7): with Bundle==1 and two files, NewWriter must be
// called once per file, each time flushed and closed before the next
// is opened.
func TestLoopNewWriterPerBundle(t *testing.T) {
	placeholderFiles(t, "a.fits", "b.fits")
	first := intTable(1)
	second := intTable(2)

	var buffers []*bytes.Buffer
	var firstFiles []string
	var closed []bool

	cfg := config.Default()
	l := &Loop{
		Files:  []string{"a.fits", "b.fits"},
		Cfg:    cfg,
		State:  config.NewRunState(1),
		Opener: &twoTableOpener{first, second},
		NewWriter: func(bundleSeq int, firstFile string) (*bufio.Writer, func() error, error) {
			buf := &bytes.Buffer{}
			buffers = append(buffers, buf)
			firstFiles = append(firstFiles, firstFile)
			closed = append(closed, false)
			idx := len(buffers) - 1
			w := bufio.NewWriter(buf)
			return w, func() error {
				closed[idx] = true
				return w.Flush()
			}, nil
		},
	}
	require.NoError(t, l.Run())

	require.Len(t, buffers, 2)
	assert.Equal(t, []string{"a.fits", "b.fits"}, firstFiles)
	assert.Equal(t, "flux\n1\n", buffers[0].String())
	assert.Equal(t, "flux\n2\n", buffers[1].String())
	assert.Equal(t, []bool{true, true}, closed)
}

// TestLoopBundleSpanningTwoFilesEmitsOneStatement exercises spec §4.6
// scenario 6: a bundle of two files sharing a single mysql INSERT must
// get exactly one CREATE TABLE, one INSERT INTO preamble, a comma
// between the two files' rows, and exactly one terminating `;` at the
// very end — never a terminator after the first file's last row.
func TestLoopBundleSpanningTwoFilesEmitsOneStatement(t *testing.T) {
	placeholderFiles(t, "a.fits", "b.fits")
	first := intTable(1, 2)
	second := intTable(3)

	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	cfg := config.Default()
	cfg.Format = config.FormatMySQL
	cfg.Bundle = 2
	cfg.Create = true
	cfg.Table = "t"
	cfg.ApplySQLDialectDefaults()

	l := &Loop{
		Files:  []string{"a.fits", "b.fits"},
		Cfg:    cfg,
		State:  config.NewRunState(1),
		Opener: &twoTableOpener{first, second},
		W:      w,
	}
	require.NoError(t, l.Run())
	require.NoError(t, w.Flush())

	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "CREATE TABLE"))
	assert.Equal(t, 1, strings.Count(got, "INSERT INTO"))
	assert.True(t, strings.HasSuffix(got, "(3);\n"), "got: %q", got)
	assert.Equal(t, 1, strings.Count(got, "(3);\n"))
	assert.Contains(t, got, "(2),\n(3)")
}

// TestLoopConcatCollapsesTwoFilesIntoOneStatement exercises spec §4.6
// scenario 6's --concat case: with the default Bundle==1 and --concat
// set, two files must still collapse into a single CREATE TABLE and a
// single INSERT INTO, not one pair per file.
func TestLoopConcatCollapsesTwoFilesIntoOneStatement(t *testing.T) {
	placeholderFiles(t, "a.fits", "b.fits")
	first := intTable(1)
	second := intTable(2)

	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	cfg := config.Default()
	cfg.Format = config.FormatMySQL
	cfg.Create = true
	cfg.Concat = true
	cfg.Table = "t"
	cfg.ApplySQLDialectDefaults()

	l := &Loop{
		Files:  []string{"a.fits", "b.fits"},
		Cfg:    cfg,
		State:  config.NewRunState(1),
		Opener: &twoTableOpener{first, second},
		W:      w,
	}
	require.NoError(t, l.Run())
	require.NoError(t, w.Flush())

	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "CREATE TABLE"))
	assert.Equal(t, 1, strings.Count(got, "INSERT INTO"))
	assert.True(t, strings.HasSuffix(got, "(2);\n"), "got: %q", got)
	assert.Equal(t, 1, strings.Count(got, "(2);\n"))
	assert.Contains(t, got, "(1),\n(2)")
}
