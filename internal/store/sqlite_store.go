package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plantmetrics/schemamap/internal/mapping"
	"github.com/plantmetrics/schemamap/internal/match"
)

// SQLiteStore implements Store over a database/sql handle with the
// modernc.org/sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTables creates the uploads and upload_mappings tables. Run during
// startup migration.
func (s *SQLiteStore) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS uploads (
			id          TEXT PRIMARY KEY,
			filename    TEXT NOT NULL,
			headers     TEXT NOT NULL DEFAULT '[]',
			tier        INTEGER NOT NULL DEFAULT 1,
			confidence  REAL NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS upload_mappings (
			upload_id     TEXT NOT NULL REFERENCES uploads(id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			source_column TEXT NOT NULL,
			target_field  TEXT NOT NULL DEFAULT '',
			confidence    REAL NOT NULL DEFAULT 0,
			match_type    TEXT NOT NULL DEFAULT 'none',
			PRIMARY KEY (upload_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_uploads_created
			ON uploads (created_at DESC);
	`)
	return err
}

func (s *SQLiteStore) CreateUpload(ctx context.Context, u *Upload) error {
	headers, err := json.Marshal(u.Headers)
	if err != nil {
		return fmt.Errorf("encoding headers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO uploads (id, filename, headers, tier, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Filename, string(headers), u.Tier, u.Confidence,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting upload: %w", err)
	}

	if err := insertMappings(ctx, tx, u.ID, u.Mappings); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetUpload(ctx context.Context, id uuid.UUID) (*Upload, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, headers, tier, confidence, created_at, updated_at
		FROM uploads WHERE id = ?`, id.String())

	u, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_column, target_field, confidence, match_type
		FROM upload_mappings WHERE upload_id = ? ORDER BY position`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m mapping.Mapping
		var matchType string
		if err := rows.Scan(&m.SourceColumn, &m.TargetField, &m.Confidence, &matchType); err != nil {
			return nil, err
		}
		m.MatchType = match.Type(matchType)
		u.Mappings = append(u.Mappings, m)
	}
	return u, rows.Err()
}

func (s *SQLiteStore) ListUploads(ctx context.Context, limit, offset int) ([]*Upload, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, headers, tier, confidence, created_at, updated_at
		FROM uploads ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveMappings(ctx context.Context, id uuid.UUID, mappings []mapping.Mapping, tier int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE uploads SET tier = ?, updated_at = ? WHERE id = ?`,
		tier, time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM upload_mappings WHERE upload_id = ?`, id.String()); err != nil {
		return err
	}
	if err := insertMappings(ctx, tx, id, mappings); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMappings(ctx context.Context, tx *sql.Tx, id uuid.UUID, mappings []mapping.Mapping) error {
	if len(mappings) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO upload_mappings (upload_id, position, source_column, target_field, confidence, match_type) VALUES `)
	args := make([]any, 0, len(mappings)*6)
	for i, m := range mappings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, id.String(), i, m.SourceColumn, m.TargetField, m.Confidence, string(m.MatchType))
	}
	if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("inserting mappings: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (*Upload, error) {
	var u Upload
	var id, headers, createdAt, updatedAt string
	if err := row.Scan(&id, &u.Filename, &headers, &u.Tier, &u.Confidence, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing upload id %q: %w", id, err)
	}
	u.ID = parsed

	if err := json.Unmarshal([]byte(headers), &u.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &u, nil
}
