package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/markdown"
	"github.com/LiteracyBridge/utilities-sub000/internal/platform/slug"
)

const (
	reportBlockStart = "<!-- tbstats:begin -->"
	reportBlockEnd   = "<!-- tbstats:end -->"
)

// MarkdownReportStore writes one report per session. Reprocessing a bundle
// rewrites the generated block and frontmatter and keeps anything written
// around them.
type MarkdownReportStore struct {
	root string
}

func NewMarkdownReportStore(root string) collectedout.ResultSink {
	return &MarkdownReportStore{root: root}
}

func (s *MarkdownReportStore) Path(result domain.SessionResult) string {
	date := result.ProcessedAt
	if result.LatestTime != nil {
		date = *result.LatestTime
	}
	name := slug.Make(result.TalkingBookID(), filepath.Base(filepath.Clean(result.BundleDir))) + ".md"
	return filepath.Join(s.root, date.Format("2006"), date.Format("01"), date.Format("02"), name)
}

func (s *MarkdownReportStore) Save(_ context.Context, result domain.SessionResult) error {
	path := s.Path(result)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	body := ""
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		_, body, err = markdown.SplitFrontmatter(string(existing))
		if err != nil {
			return fmt.Errorf("read report %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read report: %w", err)
	}

	body = markdown.ReplaceManagedBlock(body, reportBlockStart, reportBlockEnd, reportBody(result))
	rendered, err := markdown.RenderFrontmatter(reportMeta(result), body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func reportMeta(result domain.SessionResult) map[string]any {
	meta := map[string]any{
		"schema_version": domain.SchemaVersion,
		"bundle":         result.BundleDir,
		"talkingbookid":  result.TalkingBookID(),
		"collection_id":  result.CollectionID(),
		"processed_at":   result.ProcessedAt.UTC().Format(time.RFC3339),
		"files":          len(result.Files),
		"records":        result.Records,
		"errors":         result.Errors,
		"warnings":       result.Warnings,
		"boots":          result.Boots,
		"messages":       len(result.Statistics),
	}
	if result.LatestTime != nil {
		meta["latest_time"] = result.LatestTime.Format(time.RFC3339)
	}
	if result.Collected != nil {
		meta["deployment"] = result.Collected.Get("deployment")
		meta["contentpackage"] = result.Collected.Get("contentpackage")
	}
	if len(result.Mismatches) > 0 {
		meta["mismatches"] = len(result.Mismatches)
	}
	return meta
}

func reportBody(result domain.SessionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Collection %s\n\n", orDash(result.TalkingBookID()))
	for _, row := range []*domain.Row{result.Collected, result.Deployed} {
		if row == nil {
			continue
		}
		table := row.Table()
		fmt.Fprintf(&b, "## %s\n\n| column | value |\n|---|---|\n", table.Name)
		for _, c := range table.Columns {
			fmt.Fprintf(&b, "| %s | %s |\n", c, orDash(row.Get(c)))
		}
		b.WriteString("\n")
	}
	b.WriteString("## Play statistics\n\n")
	if len(result.Statistics) == 0 {
		b.WriteString("No completed plays.\n")
	} else {
		b.WriteString("| message | package | plays | completions | played ms |\n|---|---|---|---|---|\n")
		for _, st := range result.Statistics {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d |\n", st.MessageID, orDash(st.PackageName), st.Plays, st.Completions, st.PlayedMS)
		}
	}
	if len(result.Problems) > 0 || len(result.Mismatches) > 0 {
		b.WriteString("\n## Problems\n\n")
		for _, p := range result.Problems {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		for _, m := range result.Mismatches {
			fmt.Fprintf(&b, "- %s.%s: supplied %q, recomputed %q\n", m.Table, m.Column, m.Supplied, m.Recomputed)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
