package out_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleResult(bundleDir string) domain.SessionResult {
	collected := domain.NewRow(domain.CollectedTable)
	collected.Set("talkingbookid", "B-0001")
	collected.Set("deployment", "DEMO-DL-1")
	collected.Set("project", "DEMO")
	collected.Set("contentpackage", "PKG-A")
	collected.Set("collectedtimestamp", "2022-01-12T10:00:00")
	collected.Set("collection_uuid", "uuid-1")

	deployed := domain.NewRow(domain.DeployedTable)
	deployed.Set("talkingbookid", "B-0001")
	deployed.Set("deployment", "DEMO-DL-2")
	deployed.Set("deployment_uuid", "uuid-2")

	latest := time.Date(2022, 1, 12, 9, 30, 0, 0, time.UTC)
	return domain.SessionResult{
		BundleDir:   bundleDir,
		ProcessedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Collected:   &collected,
		Deployed:    &deployed,
		Statistics: []domain.PlayStatistic{
			{MessageID: "tut-0", PackageName: "PKG-A", Plays: 3, Completions: 1, PlayedMS: 42000},
			{MessageID: "health-1", PackageName: "PKG-A", Plays: 2, PlayedMS: 9000},
		},
		Files:      []string{"log_1.txt"},
		Records:    12,
		Errors:     1,
		Warnings:   2,
		Boots:      1,
		LatestTime: &latest,
		Supplied:   map[string]bool{},
	}
}
