package out

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/slug"
)

const PlayStatisticsFile = "playstatistics.csv"

// CSVDirectorySink writes each bundle's rows and statistics into its own
// directory below root.
type CSVDirectorySink struct {
	root string
}

func NewCSVDirectorySink(root string) collectedout.ResultSink {
	return &CSVDirectorySink{root: root}
}

func (s *CSVDirectorySink) Dir(result domain.SessionResult) string {
	return filepath.Join(s.root, slug.Make(filepath.Base(filepath.Clean(result.BundleDir)), result.CollectionID()))
}

func (s *CSVDirectorySink) Save(_ context.Context, result domain.SessionResult) error {
	dir := s.Dir(result)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if result.Collected != nil {
		if err := writeTable(dir, *result.Collected); err != nil {
			return err
		}
	}
	if result.Deployed != nil {
		if err := writeTable(dir, *result.Deployed); err != nil {
			return err
		}
	}
	return writeCSV(filepath.Join(dir, PlayStatisticsFile), domain.PlayStatisticsColumns, result.StatisticsRows())
}

func writeTable(dir string, row domain.Row) error {
	table := row.Table()
	return writeCSV(filepath.Join(dir, table.Name+".csv"), table.Columns, [][]string{row.Values()})
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}
