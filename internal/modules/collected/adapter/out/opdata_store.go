package out

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
)

const tbDataPattern = "**/tbData*.{log,csv,txt}"

// BundleOperationalStore reads the CSV files a Talking Book writes about its
// own collection and deployment operations.
type BundleOperationalStore struct{}

func NewBundleOperationalStore() collectedout.OperationalDataStore {
	return BundleOperationalStore{}
}

// LatestOperation returns the last data row of the newest tbData file. File
// names carry their date, so the lexically greatest name is the newest.
func (BundleOperationalStore) LatestOperation(ctx context.Context, bundleDir string) (domain.OperationalRecord, bool, error) {
	matches, err := glob(bundleDir, tbDataPattern)
	if err != nil || len(matches) == 0 {
		return nil, false, err
	}
	sort.Slice(matches, func(i, j int) bool {
		return filepath.Base(matches[i]) < filepath.Base(matches[j])
	})
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	header, last, err := lastRecord(filepath.Join(bundleDir, matches[len(matches)-1]))
	if err != nil || last == nil {
		return nil, false, err
	}
	rec := domain.OperationalRecord{}
	for i, column := range header {
		if i < len(last) {
			rec[strings.ToUpper(strings.TrimSpace(column))] = last[i]
		}
	}
	return rec, true, nil
}

// SuppliedRow returns the last row of a device-produced <table>.csv.
func (BundleOperationalStore) SuppliedRow(_ context.Context, bundleDir string, table domain.Table) (domain.Row, bool, error) {
	matches, err := glob(bundleDir, "**/"+table.Name+".csv")
	if err != nil || len(matches) == 0 {
		return domain.Row{}, false, err
	}
	sort.Strings(matches)
	header, last, err := lastRecord(filepath.Join(bundleDir, matches[0]))
	if err != nil || last == nil {
		return domain.Row{}, false, err
	}
	row := domain.NewRow(table)
	for i, column := range header {
		if i < len(last) {
			row.Set(strings.ToLower(strings.TrimSpace(column)), last[i])
		}
	}
	return row, true, nil
}

func glob(bundleDir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(bundleDir), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	return matches, nil
}

// lastRecord returns the header and the final non-empty data row of a CSV
// file; last is nil when the file has no data rows.
func lastRecord(path string) (header, last []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		last = rec
	}
	return header, last, nil
}
