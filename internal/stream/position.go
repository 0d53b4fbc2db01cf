// Package stream governs framing: preamble, per-row separators, and
// trailer bytes, as a function of target format and position within a
// multi-file bundle/concatenation run (spec §4.6, §9 design note
// "Bundle/concat framing").
package stream

// Position locates one file within a bundle and within the whole run.
// StreamProtocol uses it to decide, for each file, whether to emit a
// preamble, which per-row separator variant to use, and whether to
// emit a trailer.
type Position struct {
	// BundleIndex is this file's 0-based index within the current
	// bundle.
	BundleIndex int
	// FileIndex is this file's 0-based index within the whole run.
	FileIndex int
	// TotalFiles is the total number of files in the run.
	TotalFiles int
	// BundleSize is the configured number of files per bundle.
	BundleSize int
	// Concat is true when --concat is set: the trailer is deferred to
	// the last file of the entire run instead of the last file of each
	// bundle.
	Concat bool
}

// IsFirstInBundle reports whether this file starts a new bundle, and so
// should emit the preamble. Under --concat the whole run collapses
// into a single bundle regardless of the configured bundle size, so
// only the run's first file qualifies (spec §4.6, §6: concat "defers"
// the trailer, but a run-spanning statement also needs exactly one
// preamble, not one per configured bundle).
func (p Position) IsFirstInBundle() bool {
	if p.Concat {
		return p.FileIndex == 0
	}
	return p.BundleIndex == 0
}

// IsLastInBundle reports whether this file is the last one of its
// bundle (by configured bundle size or because it's the last file of
// the run), or, under --concat, the last file of the whole run.
func (p Position) IsLastInBundle() bool {
	if p.Concat {
		return p.IsLastFile()
	}
	if p.FileIndex == p.TotalFiles-1 {
		return true
	}
	return p.BundleIndex == p.BundleSize-1
}

// IsLastFile reports whether this is the last file of the whole run.
func (p Position) IsLastFile() bool {
	return p.FileIndex == p.TotalFiles-1
}

// EmitsTrailer reports whether this file should emit the trailer: the
// last file of the bundle, or (when concatenating) the last file of
// the run (spec §4.6).
func (p Position) EmitsTrailer() bool {
	return p.IsLastInBundle()
}
