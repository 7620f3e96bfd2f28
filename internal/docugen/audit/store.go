// Package audit persists traceability records for generated documents.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"docugen-workers/internal/models"
)

var ErrAuditWriteFailed = errors.New("AUDIT_WRITE_FAILED")

// Store records traceability info keyed by document hash. Save reports
// whether a new record was written; saving an existing hash is a no-op.
type Store interface {
	Save(ctx context.Context, info *models.TraceabilityInfo) (bool, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS document_audit (
	document_hash     TEXT PRIMARY KEY,
	source_data_hash  TEXT NOT NULL,
	hash_algorithm    TEXT NOT NULL,
	template_id       TEXT NOT NULL,
	template_version  TEXT NOT NULL,
	generated_at      TIMESTAMPTZ NOT NULL,
	trace             JSONB NOT NULL
)`

const insertRecord = `INSERT INTO document_audit
	(document_hash, source_data_hash, hash_algorithm, template_id, template_version, generated_at, trace)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (document_hash) DO NOTHING`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, info *models.TraceabilityInfo) (bool, error) {
	trace, err := json.Marshal(info)
	if err != nil {
		return false, fmt.Errorf("%w: encode trace: %v", ErrAuditWriteFailed, err)
	}

	res, err := s.db.ExecContext(ctx, insertRecord,
		info.DocumentHash,
		info.SourceDataHash,
		info.HashAlgorithm,
		strings.Join(info.TemplatesUsed, ","),
		info.TemplateVersion,
		info.GenerationTimestamp,
		trace,
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAuditWriteFailed, err)
	}
	return n > 0, nil
}
