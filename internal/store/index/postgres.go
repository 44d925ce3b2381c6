package index

import (
	"context"
	"fmt"

	"github.com/evidence-toolkit/evitool/internal/schema"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// PostgresIndex is the Postgres-backed secondary index, for deployments
// that need concurrent multi-process access to the index (the filesystem
// store itself has no such requirement).
type PostgresIndex struct {
	db *sqlx.DB
}

// NewPostgresIndex connects to dsn and ensures the index schema exists.
func NewPostgresIndex(dsn string) (*PostgresIndex, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres index: %w", err)
	}

	idx := &PostgresIndex{db: db}
	if err := idx.initSchema(); err != nil {
		return nil, fmt.Errorf("init index schema: %w", err)
	}
	return idx, nil
}

func (idx *PostgresIndex) initSchema() error {
	_, err := idx.db.Exec(`
	CREATE TABLE IF NOT EXISTS evidence (
		sha256 TEXT NOT NULL,
		case_id TEXT NOT NULL,
		filename TEXT,
		mime_type TEXT,
		file_size BIGINT,
		ingested_at TIMESTAMPTZ,
		analyzed BOOLEAN DEFAULT FALSE,
		PRIMARY KEY (sha256, case_id)
	);
	CREATE INDEX IF NOT EXISTS idx_evidence_case ON evidence(case_id);
	`)
	return err
}

func (idx *PostgresIndex) Upsert(ctx context.Context, rec Record) error {
	_, err := idx.db.ExecContext(ctx, `
		INSERT INTO evidence (sha256, case_id, filename, mime_type, file_size, ingested_at, analyzed)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		ON CONFLICT (sha256, case_id) DO UPDATE SET
			filename = EXCLUDED.filename,
			mime_type = EXCLUDED.mime_type,
			file_size = EXCLUDED.file_size,
			ingested_at = EXCLUDED.ingested_at
	`, rec.SHA256, rec.CaseID, rec.Filename, rec.MimeType, rec.FileSize, rec.IngestedAt)
	return err
}

func (idx *PostgresIndex) MarkAnalyzed(ctx context.Context, hash schema.SHA256Hex) error {
	_, err := idx.db.ExecContext(ctx, `UPDATE evidence SET analyzed = TRUE WHERE sha256 = $1`, hash)
	return err
}

func (idx *PostgresIndex) Remove(ctx context.Context, hash schema.SHA256Hex) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM evidence WHERE sha256 = $1`, hash)
	return err
}

func (idx *PostgresIndex) ListCase(ctx context.Context, caseID string) ([]schema.SHA256Hex, error) {
	var rows []string
	if err := idx.db.SelectContext(ctx, &rows, `
		SELECT sha256 FROM evidence WHERE case_id = $1 ORDER BY ingested_at ASC, sha256 ASC
	`, caseID); err != nil {
		return nil, err
	}
	hashes := make([]schema.SHA256Hex, len(rows))
	for i, r := range rows {
		hashes[i] = schema.SHA256Hex(r)
	}
	return hashes, nil
}

func (idx *PostgresIndex) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := idx.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT sha256), COALESCE(SUM(file_size), 0) FROM evidence`)
	if err := row.Scan(&st.EvidenceCount, &st.TotalBytes); err != nil {
		return st, err
	}
	if err := idx.db.GetContext(ctx, &st.AnalyzedCount, `SELECT COUNT(DISTINCT sha256) FROM evidence WHERE analyzed = TRUE`); err != nil {
		return st, err
	}
	if err := idx.db.GetContext(ctx, &st.CaseCount, `SELECT COUNT(DISTINCT case_id) FROM evidence`); err != nil {
		return st, err
	}
	return st, nil
}

func (idx *PostgresIndex) Close() error {
	return idx.db.Close()
}
