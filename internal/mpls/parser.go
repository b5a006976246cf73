package mpls

import (
	"log/slog"
	"path/filepath"
	"time"

	"discchapters/internal/binutil"
	"discchapters/internal/logging"
)

// Fallback stages recorded in Result.Fallback.
const (
	FallbackNone         = ""
	FallbackNextNumbered = "next_numbered"
	FallbackSweep        = "sweep"
)

// Options tunes the degenerate-playlist fallback and the rounding corrections.
type Options struct {
	// SweepMinDrift is the absolute duration tolerance of the directory sweep.
	SweepMinDrift time.Duration
	// SweepRatio is the relative tolerance, as a fraction of the primary duration.
	SweepRatio float64
	// ExtraPatterns are appended to the built-in trailing segment patterns.
	ExtraPatterns [][]int
}

// DefaultOptions returns the stock tolerances.
func DefaultOptions() Options {
	return Options{
		SweepMinDrift: 3 * time.Second,
		SweepRatio:    0.02,
	}
}

// Result is the chapter list derived for one playlist path.
type Result struct {
	Chapters         []Chapter
	PlaylistDuration time.Duration
	PlayItemCount    int
	// MarkCount is the raw mark count before type filtering.
	MarkCount int
	// Source is the playlist the chapters came from; it differs from the
	// requested path when a fallback was used.
	Source   string
	Fallback string
}

// Parser derives chapters from MPLS playlists read through a Source.
type Parser struct {
	src      Source
	opts     Options
	patterns [][]int
	logger   *slog.Logger
}

// NewParser builds a parser. A nil src reads from the local filesystem and a
// nil logger discards output.
func NewParser(src Source, opts Options, logger *slog.Logger) *Parser {
	if src == nil {
		src = OSSource()
	}
	defaults := DefaultOptions()
	if opts.SweepMinDrift <= 0 {
		opts.SweepMinDrift = defaults.SweepMinDrift
	}
	if opts.SweepRatio <= 0 {
		opts.SweepRatio = defaults.SweepRatio
	}
	patterns := TrailingPatterns()
	for _, p := range opts.ExtraPatterns {
		if len(p) > 0 {
			patterns = append(patterns, append([]int(nil), p...))
		}
	}
	return &Parser{
		src:      src,
		opts:     opts,
		patterns: patterns,
		logger:   logging.NewComponentLogger(logger, "mpls"),
	}
}

// Parse derives chapters for the playlist at path with default options.
func Parse(path string) Result {
	return NewParser(nil, DefaultOptions(), nil).Parse(path)
}

// Parse never fails. An unreadable playlist yields a Result with no chapters
// and no fallback; a readable one with fewer than two marks may take its
// chapters from a sibling.
func (p *Parser) Parse(path string) Result {
	logger := p.logger.With(logging.String(logging.FieldPath, path))

	primary, ok := p.extractFile(path)
	if !ok {
		// Siblings are only consulted for a readable playlist with too few marks.
		logging.WarnWithContext(logger, "playlist unreadable", "mpls_unreadable",
			logging.String(logging.FieldErrorHint, "file is missing, truncated or not an MPLS playlist"))
		return Result{Source: path}
	}

	chosen, source, stage := primary, path, FallbackNone
	if binutil.Degenerate(len(primary.Marks)) {
		if pl, from, how, found := p.fallback(path, primary, logger); found {
			chosen, source, stage = pl, from, how
		}
	}

	result := Result{Source: source, Fallback: stage}
	result.PlaylistDuration = chosen.Duration()
	result.PlayItemCount = len(chosen.Items)
	result.MarkCount = chosen.MarkCount
	if stage == FallbackSweep {
		result.MarkCount = primary.MarkCount
	}

	starts, marks := chapterStarts(chosen)
	if len(starts) == 0 {
		return result
	}
	lengths := chapterLengths(chosen, starts, marks)
	result.Chapters = buildChapters(starts, lengths, p.patterns)

	logger.Debug("playlist parsed",
		logging.String("source", filepath.Base(source)),
		logging.Int("chapters", len(result.Chapters)),
		logging.Int("play_items", result.PlayItemCount),
		logging.Duration("duration", result.PlaylistDuration))
	return result
}

func (p *Parser) extractFile(path string) (*Playlist, bool) {
	data, err := p.src.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return Extract(data)
}
