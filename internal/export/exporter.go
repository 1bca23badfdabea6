package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/finops-dwh/o2c/internal/progress"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Exporter writes one CSV per non-empty provider bucket.
type Exporter struct {
	// Root is the base output directory. Dirs maps provider names to their
	// subdirectories beneath it; providers without an entry land in a
	// directory named after the provider.
	Root     string
	Dirs     map[string]string
	Reporter progress.Reporter
}

// Export partitions rows and writes each non-empty bucket under its
// provider directory, creating directories as needed and overwriting
// existing files. Empty buckets produce a skip notice and no file. Returns
// the written paths in provider order; on failure the already-written paths
// are returned alongside the error and left in place.
func (e *Exporter) Export(rs *warehouse.Rowset, periodLabel string) ([]string, error) {
	buckets, err := Partition(rs)
	if err != nil {
		return nil, fmt.Errorf("Exporter.Export: %w", err)
	}

	rep := e.Reporter
	if rep == nil {
		rep = progress.Nop()
	}

	var written []string
	for _, p := range Providers {
		bucket := buckets[p]
		if bucket.Len() == 0 {
			rep.Report(progress.Event{
				Stage:   progress.StageExport,
				Message: fmt.Sprintf("no rows for %s, skipping", p),
			})
			continue
		}

		dir := filepath.Join(e.Root, e.providerDir(p))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, fmt.Errorf("Exporter.Export: creating %s: %w", dir, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("%s - %s DWH data.csv", periodLabel, p))
		if err := writeFile(path, bucket); err != nil {
			return written, fmt.Errorf("Exporter.Export: %w", err)
		}
		written = append(written, path)

		rep.Report(progress.Event{
			Stage:   progress.StageExport,
			Message: fmt.Sprintf("saved %d rows for %s to %s", bucket.Len(), p, path),
		})
	}
	return written, nil
}

func (e *Exporter) providerDir(p Provider) string {
	if dir, ok := e.Dirs[string(p)]; ok && dir != "" {
		return filepath.FromSlash(dir)
	}
	return string(p)
}

func writeFile(path string, rs *warehouse.Rowset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := NewWriter(f).WriteRowset(rs); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
