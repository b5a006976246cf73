package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"discchapters/internal/disc"
	"discchapters/internal/fileutil"
	"discchapters/internal/ifo"
	"discchapters/internal/logging"
	"discchapters/internal/mpls"
	"discchapters/internal/report"
	"discchapters/internal/resultcache"
)

// settingsVersion is bumped whenever parser output changes for the same input.
const settingsVersion = "1"

// Cache is the subset of the result cache the analyzer needs.
type Cache interface {
	Get(ctx context.Context, key resultcache.Key) (*report.Report, bool, error)
	Put(ctx context.Context, key resultcache.Key, rep *report.Report, runID string) error
}

// Analyzer produces chapter reports for disc files.
type Analyzer struct {
	parser   *mpls.Parser
	cache    Cache
	settings string
	logger   *slog.Logger
}

// New builds an analyzer. cache may be nil. Per-run fields such as the run id
// should already be attached to logger.
func New(opts mpls.Options, cache Cache, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		parser:   mpls.NewParser(mpls.OSSource(), opts, logger),
		cache:    cache,
		settings: settingsFingerprint(opts),
		logger:   logging.NewComponentLogger(logger, "analyzer"),
	}
}

// Analyze resolves path (a file or disc root) and returns its chapter report.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*report.Report, error) {
	file, err := disc.Resolve(path)
	if err != nil {
		return nil, err
	}
	rep, _, err := a.analyzeFile(ctx, file)
	return rep, err
}

// analyzeFile parses one resolved file, reporting whether the cache answered.
func (a *Analyzer) analyzeFile(ctx context.Context, file disc.File) (*report.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	logger := a.logger.With(logging.String(logging.FieldPath, file.Path))

	var key resultcache.Key
	if a.cache != nil {
		digest, err := a.digest(file)
		if err != nil {
			return nil, false, fmt.Errorf("hash %s: %w", file.Path, err)
		}
		key = resultcache.Key{Path: file.Path, Digest: digest, Settings: a.settings}
		rep, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			logging.WarnWithContext(logger, "cache lookup failed", "cache_read_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "file is parsed again"))
		} else if ok {
			logger.Debug("cache hit", logging.String("digest", digest))
			return rep, true, nil
		}
	}

	var rep *report.Report
	switch file.Kind {
	case disc.KindDVD:
		res, err := ifo.ParseFile(file.Path)
		if err != nil {
			return nil, false, fmt.Errorf("parse %s: %w", file.Path, err)
		}
		rep = report.FromIFO(file.Path, res)
	case disc.KindBluray:
		rep = report.FromPlaylist(file.Path, a.parser.Parse(file.Path))
	default:
		return nil, false, fmt.Errorf("%s: %w", file.Path, disc.ErrUnsupportedFile)
	}
	logger.Debug("chapters extracted",
		logging.String("kind", string(rep.Kind)),
		logging.Int("chapters", len(rep.Rows)),
		logging.Duration("duration", rep.Duration))

	if a.cache != nil {
		runID, _ := logging.RunIDFromContext(ctx)
		if err := a.cache.Put(ctx, key, rep, runID); err != nil {
			logging.WarnWithContext(logger, "cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run parses this file again"))
		}
	}
	return rep, false, nil
}

// digest keys a file by content. Playlists also cover their sibling listing,
// since the fallback may take chapters from another playlist.
func (a *Analyzer) digest(file disc.File) (string, error) {
	sum, err := fileutil.HashFile(file.Path)
	if err != nil {
		return "", err
	}
	if file.Kind != disc.KindBluray {
		return sum.String(), nil
	}
	stamp, err := directoryStamp(filepath.Dir(file.Path))
	if err != nil {
		return "", err
	}
	return sum.String() + "/" + stamp, nil
}

// directoryStamp digests the name, size and modification time of every
// playlist in dir.
func directoryStamp(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	fold := cases.Fold()
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(fold.String(entry.Name()), ".mpls") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%d\t%d", entry.Name(), info.Size(), info.ModTime().UnixNano()))
	}
	sort.Strings(lines)
	sum, err := fileutil.HashReader(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return "", err
	}
	return sum.SHA256, nil
}

func settingsFingerprint(opts mpls.Options) string {
	return fmt.Sprintf("v%s drift=%s ratio=%g extra=%v", settingsVersion, opts.SweepMinDrift, opts.SweepRatio, opts.ExtraPatterns)
}
