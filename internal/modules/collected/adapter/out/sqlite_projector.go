package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteProjector keeps a queryable copy of every processed collection.
type SQLiteProjector struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteProjector(dbPath string) (*SQLiteProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	projector := &SQLiteProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return projector, nil
}

var _ collectedout.CollectionIndex = (*SQLiteProjector)(nil)

func (s *SQLiteProjector) Close() error {
	return s.db.Close()
}

func (s *SQLiteProjector) ensureSchema(ctx context.Context) error {
	ddl := []string{
		tableDDL(domain.CollectedTable),
		tableDDL(domain.DeployedTable),
		`
CREATE TABLE IF NOT EXISTS playstatistics (
  collection_key TEXT NOT NULL,
  talkingbookid TEXT NOT NULL,
  deployment TEXT NOT NULL,
  contentpackage TEXT NOT NULL,
  messageid TEXT NOT NULL,
  plays INTEGER NOT NULL,
  completions INTEGER NOT NULL,
  threequarters INTEGER NOT NULL,
  half INTEGER NOT NULL,
  quarter INTEGER NOT NULL,
  tenseconds INTEGER NOT NULL,
  played_ms INTEGER NOT NULL,
  max_played_ms INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  pauses INTEGER NOT NULL,
  forward_ms INTEGER NOT NULL,
  backward_ms INTEGER NOT NULL,
  PRIMARY KEY (collection_key, contentpackage, messageid)
);`,
		`
CREATE TABLE IF NOT EXISTS sessions (
  collection_key TEXT PRIMARY KEY,
  bundle_dir TEXT NOT NULL,
  talkingbookid TEXT NOT NULL,
  errors INTEGER NOT NULL,
  warnings INTEGER NOT NULL,
  processed_at TEXT NOT NULL
);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// tableDDL stores every column as text, keyed by the table's identity column.
func tableDDL(table domain.Table) string {
	cols := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		if c == table.IdentityColumn {
			cols = append(cols, c+" TEXT PRIMARY KEY")
			continue
		}
		cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", table.Name, strings.Join(cols, ",\n  "))
}

func upsertStmt(table domain.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
	updates := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		if c != table.IdentityColumn {
			updates = append(updates, fmt.Sprintf("%s=excluded.%s", c, c))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s)\nVALUES (%s)\nON CONFLICT(%s) DO UPDATE SET\n  %s;",
		table.Name, strings.Join(table.Columns, ", "), placeholders, table.IdentityColumn, strings.Join(updates, ",\n  "))
}

// collectionKey identifies a session in the projection. Sessions without a
// collection row fall back to their bundle directory.
func collectionKey(result domain.SessionResult) string {
	if id := result.CollectionID(); id != "" {
		return id
	}
	return result.BundleDir
}

// Save replaces everything projected for the session in one transaction.
func (s *SQLiteProjector) Save(ctx context.Context, result domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin projection: %w", err)
	}
	defer tx.Rollback()

	for _, row := range []*domain.Row{result.Collected, result.Deployed} {
		if row == nil {
			continue
		}
		if err := upsertRow(ctx, tx, *row); err != nil {
			return err
		}
	}

	key := collectionKey(result)
	if _, err := tx.ExecContext(ctx, `DELETE FROM playstatistics WHERE collection_key = ?`, key); err != nil {
		return fmt.Errorf("reset statistics: %w", err)
	}
	const insertStat = `
INSERT INTO playstatistics (collection_key, talkingbookid, deployment, contentpackage, messageid, plays, completions,
  threequarters, half, quarter, tenseconds, played_ms, max_played_ms, duration_ms, pauses, forward_ms, backward_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(collection_key, contentpackage, messageid) DO UPDATE SET
  plays=excluded.plays,
  completions=excluded.completions,
  threequarters=excluded.threequarters,
  half=excluded.half,
  quarter=excluded.quarter,
  tenseconds=excluded.tenseconds,
  played_ms=excluded.played_ms,
  max_played_ms=excluded.max_played_ms,
  duration_ms=excluded.duration_ms,
  pauses=excluded.pauses,
  forward_ms=excluded.forward_ms,
  backward_ms=excluded.backward_ms;
`
	deployment := ""
	if result.Collected != nil {
		deployment = result.Collected.Get("deployment")
	}
	for _, st := range result.Statistics {
		_, err := tx.ExecContext(ctx, insertStat,
			key, result.TalkingBookID(), deployment, st.PackageName, st.MessageID,
			st.Plays, st.Completions, st.ThreeQuarters, st.Half, st.Quarter, st.TenSeconds,
			st.PlayedMS, st.MaxPlayedMS, st.DurationMS, st.Pauses, st.ForwardMS, st.BackwardMS,
		)
		if err != nil {
			return fmt.Errorf("insert statistic %s: %w", st.MessageID, err)
		}
	}

	const upsertSession = `
INSERT INTO sessions (collection_key, bundle_dir, talkingbookid, errors, warnings, processed_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(collection_key) DO UPDATE SET
  bundle_dir=excluded.bundle_dir,
  talkingbookid=excluded.talkingbookid,
  errors=excluded.errors,
  warnings=excluded.warnings,
  processed_at=excluded.processed_at;
`
	_, err = tx.ExecContext(ctx, upsertSession,
		key, result.BundleDir, result.TalkingBookID(), result.Errors, result.Warnings,
		result.ProcessedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection: %w", err)
	}
	return nil
}

func upsertRow(ctx context.Context, tx *sql.Tx, row domain.Row) error {
	table := row.Table()
	values := row.Values()
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := tx.ExecContext(ctx, upsertStmt(table), args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table.Name, err)
	}
	return nil
}

// List summarizes projected sessions, newest first.
func (s *SQLiteProjector) List(ctx context.Context) ([]domain.CollectionSummary, error) {
	const query = `
SELECT s.collection_key,
       s.talkingbookid,
       COALESCE(c.deployment, ''),
       COALESCE(c.contentpackage, ''),
       COALESCE(c.collectedtimestamp, ''),
       COUNT(p.messageid),
       COALESCE(SUM(p.plays), 0),
       s.errors,
       s.processed_at
FROM sessions s
LEFT JOIN tbscollected c ON c.collection_uuid = s.collection_key
LEFT JOIN playstatistics p ON p.collection_key = s.collection_key
GROUP BY s.collection_key
ORDER BY s.processed_at DESC, s.collection_key;
`
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var out []domain.CollectionSummary
	for rows.Next() {
		var c domain.CollectionSummary
		if err := rows.Scan(&c.CollectionID, &c.TalkingBookID, &c.Deployment, &c.ContentPackage,
			&c.CollectedAt, &c.Messages, &c.Plays, &c.Errors, &c.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}
