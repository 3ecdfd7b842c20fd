package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

// FileLoader reads `<dir>/<site>_data.csv`.
type FileLoader struct {
	dir string
	log *zap.Logger
}

func NewFileLoader(dir string, log *zap.Logger) *FileLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileLoader{dir: dir, log: log}
}

// Load implements solar.Loader. A missing file yields an empty dataset.
func (l *FileLoader) Load(_ context.Context, siteID string) (solar.Dataset, error) {
	path := filepath.Join(l.dir, FileName(siteID))

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("dataset file not found", zap.String("site", siteID), zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, skipped, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if skipped > 0 {
		l.log.Warn("skipped unreadable dataset records",
			zap.String("site", siteID), zap.String("path", path), zap.Int("skipped", skipped))
	}
	return ds, nil
}
