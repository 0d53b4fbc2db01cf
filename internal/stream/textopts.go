package stream

import (
	"fits2db/internal/config"
	"fits2db/internal/emit"
)

// DeriveTextOptions builds the emit.TextOptions a run uses for every
// cell, from the resolved RunConfig (spec §4.4). The three output
// families quote strings differently: plain delimited/IPAC output
// wraps in the active quote character, the two single-statement SQL
// dialects (mysql, sqlite) additionally escape embedded quote
// characters since the string sits inside one INSERT statement, and
// --noquote (cfg.Quote == 0) disables wrapping everywhere.
func DeriveTextOptions(cfg *config.RunConfig) emit.TextOptions {
	opts := emit.TextOptions{
		Strip:            cfg.Strip,
		QuoteChar:        byte(cfg.Quote),
		Delimiter:        cfg.Delimiter,
		IPAC:             cfg.Format == config.FormatIPAC,
		SQLArrayBrackets: cfg.Format.IsSQL(),
		Style:            numericStyle(cfg.Format),
	}
	if cfg.Quote == 0 {
		opts.Quote = emit.QuotePassthrough
		return opts
	}
	switch cfg.Format {
	case config.FormatMySQL, config.FormatSQLite:
		opts.Quote = emit.QuoteWrapEscape
	default:
		opts.Quote = emit.QuoteWrap
	}
	return opts
}

func numericStyle(f config.Format) emit.NumericStyle {
	switch f {
	case config.FormatPostgres:
		return emit.StylePostgres
	case config.FormatMySQL, config.FormatSQLite:
		return emit.StyleMySQLSQLite
	default:
		return emit.StyleGeneric
	}
}
