package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/ports"

	"github.com/tidwall/jsonc"
	"golang.org/x/sync/errgroup"
)

var ErrDataDirNotFound = errors.New("data directory not found")

const defaultWorkers = 4

// Loader reads telemetry event files from a directory tree. Files are
// visited in sorted path order and events keep their order within a
// file, so repeated loads of the same tree yield the same sequence.
type Loader struct {
	dir     string
	workers int
	logger  *slog.Logger
}

func NewLoader(dir string, workers int, logger *slog.Logger) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, workers: workers, logger: logger}
}

var _ ports.EventSourcePort = (*Loader)(nil)

func (l *Loader) LoadEvents(ctx context.Context) ([]domain.RawEvent, error) {
	info, err := os.Stat(l.dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDataDirNotFound, l.dir)
	}

	paths, err := l.discover()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no JSON files found in %s", domain.ErrNoData, l.dir)
	}

	perFile := make([][]domain.RawEvent, len(paths))
	failed := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evs, err := decodeFile(path)
			if err != nil {
				l.logger.WarnContext(gctx, "skipping event file", "path", path, "error", err)
				failed[i] = true
				return nil
			}
			perFile[i] = evs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		out     []domain.RawEvent
		skipped int
	)
	for i, evs := range perFile {
		if failed[i] {
			skipped++
			continue
		}
		out = append(out, evs...)
	}

	// The file count covers every discovered file, skipped ones included.
	l.logger.InfoContext(ctx, fmt.Sprintf("loaded %d events from %d files", len(out), len(paths)),
		"dir", l.dir,
		"skipped_files", skipped,
	)
	return out, nil
}

func (l *Loader) discover() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isEventFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// decodeFile accepts JSON with comments and trailing commas.
func decodeFile(path string) ([]domain.RawEvent, error) {
	data, err := readEventFile(path)
	if err != nil {
		return nil, err
	}
	return domain.DecodeRawEvents(jsonc.ToJSON(data))
}
