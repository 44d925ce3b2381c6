package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteIndex is the default local secondary index, one file per store
// root.
type SQLiteIndex struct {
	db *sqlx.DB
}

// NewSQLiteIndex opens (creating if necessary) a SQLite-backed index at
// path.
func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite index: %w", err)
	}
	db.Exec("PRAGMA journal_mode = WAL")

	idx := &SQLiteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		return nil, fmt.Errorf("init index schema: %w", err)
	}
	return idx, nil
}

func (idx *SQLiteIndex) initSchema() error {
	_, err := idx.db.Exec(`
	CREATE TABLE IF NOT EXISTS evidence (
		sha256 TEXT NOT NULL,
		case_id TEXT NOT NULL,
		filename TEXT,
		mime_type TEXT,
		file_size INTEGER,
		ingested_at DATETIME,
		analyzed INTEGER DEFAULT 0,
		PRIMARY KEY (sha256, case_id)
	);
	CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence(case_id);
	`)
	return err
}

func (idx *SQLiteIndex) Upsert(ctx context.Context, rec Record) error {
	_, err := idx.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO evidence
		(sha256, case_id, filename, mime_type, file_size, ingested_at, analyzed)
		VALUES (?, ?, ?, ?, ?, ?, COALESCE((SELECT analyzed FROM evidence WHERE sha256 = ? AND case_id = ?), 0))
	`, rec.SHA256, rec.CaseID, rec.Filename, rec.MimeType, rec.FileSize, rec.IngestedAt, rec.SHA256, rec.CaseID)
	return err
}

func (idx *SQLiteIndex) MarkAnalyzed(ctx context.Context, hash schema.SHA256Hex) error {
	_, err := idx.db.ExecContext(ctx, `UPDATE evidence SET analyzed = 1 WHERE sha256 = ?`, hash)
	return err
}

func (idx *SQLiteIndex) Remove(ctx context.Context, hash schema.SHA256Hex) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM evidence WHERE sha256 = ?`, hash)
	return err
}

func (idx *SQLiteIndex) ListCase(ctx context.Context, caseID string) ([]schema.SHA256Hex, error) {
	var rows []string
	err := idx.db.SelectContext(ctx, &rows, `
		SELECT sha256 FROM evidence WHERE case_id = ? ORDER BY ingested_at ASC, sha256 ASC
	`, caseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	hashes := make([]schema.SHA256Hex, len(rows))
	for i, r := range rows {
		hashes[i] = schema.SHA256Hex(r)
	}
	return hashes, nil
}

func (idx *SQLiteIndex) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := idx.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT sha256), COALESCE(SUM(file_size), 0) FROM evidence`)
	if err := row.Scan(&st.EvidenceCount, &st.TotalBytes); err != nil {
		return st, err
	}
	if err := idx.db.GetContext(ctx, &st.AnalyzedCount, `SELECT COUNT(DISTINCT sha256) FROM evidence WHERE analyzed = 1`); err != nil {
		return st, err
	}
	if err := idx.db.GetContext(ctx, &st.CaseCount, `SELECT COUNT(DISTINCT case_id) FROM evidence`); err != nil {
		return st, err
	}
	return st, nil
}

func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}
