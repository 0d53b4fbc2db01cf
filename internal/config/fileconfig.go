package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileDefaults is the shape of an optional --config TOML file: default
// flag values applied before CLI flags are parsed, so a single
// reviewable file can pin behavior for a batch run over many files
// (SPEC_FULL.md §6.1). CLI flags always take precedence over these.
type FileDefaults struct {
	Bundle    int    `toml:"bundle"`
	Chunk     int    `toml:"chunk"`
	Format    string `toml:"format"`
	SQL       string `toml:"sql"`
	Table     string `toml:"table"`
	DBName    string `toml:"dbname"`
	Explode   bool   `toml:"explode"`
	NoQuote   bool   `toml:"noquote"`
	SidColumn string `toml:"sid"`
	RidColumn string `toml:"rid"`
	AddColumn string `toml:"add"`
}

// LoadFileDefaults reads and decodes a --config TOML file.
func LoadFileDefaults(path string) (*FileDefaults, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return DecodeFileDefaults(f)
}

// DecodeFileDefaults decodes a --config TOML document from r.
func DecodeFileDefaults(r io.Reader) (*FileDefaults, error) {
	var fd FileDefaults
	if _, err := toml.NewDecoder(r).Decode(&fd); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &fd, nil
}

// ApplyTo overlays non-zero fields of fd onto c. Called before CLI
// flags are parsed, so flags still win when both are set.
func (fd *FileDefaults) ApplyTo(c *RunConfig) {
	if fd.Bundle != 0 {
		c.Bundle = fd.Bundle
	}
	if fd.Chunk != 0 {
		c.Chunk = fd.Chunk
	}
	if fd.Table != "" {
		c.Table = fd.Table
	}
	if fd.DBName != "" {
		c.DBName = fd.DBName
	}
	if fd.SidColumn != "" {
		c.SidColumn = fd.SidColumn
	}
	if fd.RidColumn != "" {
		c.RidColumn = fd.RidColumn
	}
	if fd.AddColumn != "" {
		c.AddColumn = fd.AddColumn
	}
	if fd.Explode {
		c.Explode = true
	}
	if fd.NoQuote {
		c.Quote = 0
	}
	if fd.Format != "" {
		switch f := Format(strings.ToLower(strings.TrimSpace(fd.Format))); f {
		case FormatCSV, FormatTSV, FormatBSV, FormatASV, FormatIPAC:
			c.Format = f
			c.ApplyDelimitedFormatDefaults()
		default:
			if f, err := ParseFormat(fd.Format); err == nil {
				c.Format = f
			}
		}
	}
	if fd.SQL != "" {
		if f, err := ParseFormat(fd.SQL); err == nil {
			c.Format = f
			c.ApplySQLDialectDefaults()
		}
	}
}
