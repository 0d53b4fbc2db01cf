package stream

import (
	"bufio"

	"fits2db/internal/config"
)

// pgBinaryTrailer is the PG-binary end-of-data marker: a file-trailer
// field count of -1 (spec §4.6, §6).
var pgBinaryTrailer = []byte{0xFF, 0xFF}

// Trailer writes the once-per-bundle (or once-per-run, under --concat)
// closing bytes for pos, per cfg.Format. It is a no-op unless
// pos.EmitsTrailer().
func Trailer(w *bufio.Writer, cfg *config.RunConfig, pos Position) error {
	if !pos.EmitsTrailer() {
		return nil
	}

	switch cfg.Format {
	case config.FormatPostgres:
		if cfg.Binary {
			_, err := w.Write(pgBinaryTrailer)
			return err
		}
		_, err := w.WriteString("\\.\n")
		return err
	case config.FormatMySQL, config.FormatSQLite:
		_, err := w.WriteString(";\n")
		return err
	default:
		return nil
	}
}
