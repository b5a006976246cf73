package mpls

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"discchapters/internal/binutil"
	"discchapters/internal/logging"
)

var numberedPlaylist = regexp.MustCompile(`^\d{5}$`)

const maxPlaylistNumber = 99999

// nextNumberedPath returns the path of the playlist numbered one higher than
// path (00000.mpls -> 00001.mpls), or "" when the name is not five digits.
func nextNumberedPath(path string) string {
	dir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if !numberedPlaylist.MatchString(name) {
		return ""
	}
	n, err := strconv.Atoi(name)
	if err != nil || n >= maxPlaylistNumber {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("%05d.mpls", n+1))
}

// sweepCandidate is a sibling playlist that passed duration screening.
type sweepCandidate struct {
	path  string
	marks int
}

// sweepSiblings screens every other .mpls file next to path and returns the one
// with the most raw marks among those whose duration is within tolerance of
// self. Ties keep the first candidate in directory order.
func (p *Parser) sweepSiblings(path string, self Summary, logger *slog.Logger) (sweepCandidate, bool) {
	dir := filepath.Dir(path)
	entries, err := p.src.ReadDir(dir)
	if err != nil {
		logger.Debug("playlist sweep skipped",
			logging.String("dir", dir),
			logging.Error(err))
		return sweepCandidate{}, false
	}

	fold := cases.Fold()
	selfName := fold.String(filepath.Base(path))

	var best sweepCandidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		folded := fold.String(name)
		if !strings.HasSuffix(folded, ".mpls") || folded == selfName {
			continue
		}
		candidate := filepath.Join(dir, name)
		data, err := p.src.ReadFile(candidate)
		if err != nil {
			continue
		}
		summary, ok := QuickRead(data)
		if !ok || binutil.Degenerate(summary.MarkCount) {
			continue
		}
		if !binutil.WithinTolerance(self.Duration(), summary.Duration(), p.opts.SweepMinDrift, p.opts.SweepRatio) {
			continue
		}
		if summary.MarkCount > best.marks {
			best = sweepCandidate{path: candidate, marks: summary.MarkCount}
		}
	}
	return best, best.path != ""
}

// fallback tries to replace a readable but degenerate primary playlist. It
// returns the replacement, its path and the stage that produced it, or
// ok=false when the primary should be kept.
func (p *Parser) fallback(path string, primary *Playlist, logger *slog.Logger) (*Playlist, string, string, bool) {
	if next := nextNumberedPath(path); next != "" {
		if pl, ok := p.extractFile(next); ok && !binutil.Degenerate(len(pl.Marks)) {
			logger.Info("using next numbered playlist",
				logging.String("fallback", FallbackNextNumbered),
				logging.String("replacement", filepath.Base(next)),
				logging.Int("chapter_marks", len(pl.Marks)))
			return pl, next, FallbackNextNumbered, true
		}
	}

	self := Summary{TotalTicks: primary.TotalTicks, MarkCount: primary.MarkCount}
	winner, ok := p.sweepSiblings(path, self, logger)
	if !ok {
		logger.Debug("no playlist fallback found",
			logging.String(logging.FieldEventType, "mpls_fallback_exhausted"))
		return nil, "", "", false
	}
	pl, ok := p.extractFile(winner.path)
	if !ok || binutil.Degenerate(len(pl.Marks)) {
		logger.Debug("sweep winner unusable",
			logging.String("replacement", filepath.Base(winner.path)))
		return nil, "", "", false
	}
	logger.Info("using similar playlist from directory sweep",
		logging.String("fallback", FallbackSweep),
		logging.String("replacement", filepath.Base(winner.path)),
		logging.Int("raw_marks", winner.marks),
		logging.Duration("duration", pl.Duration()))
	return pl, winner.path, FallbackSweep, true
}
