package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"corridor_dispatch/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS corridor_journal (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	train_number TEXT,
	tick         INTEGER NOT NULL,
	payload      JSONB NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
)`

// PGSink appends records to Postgres. The caller owns db.
type PGSink struct {
	db *sql.DB
}

func NewPGSink(db *sql.DB) *PGSink {
	return &PGSink{db: db}
}

// EnsureSchema creates the journal table when missing.
func (p *PGSink) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create corridor_journal: %w", err)
	}
	return nil
}

func (p *PGSink) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PGSink) Write(ctx context.Context, rec models.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var trainNumber sql.NullString
	if rec.TrainNumber != "" {
		trainNumber = sql.NullString{String: rec.TrainNumber, Valid: true}
	}
	q := `
		INSERT INTO corridor_journal (id, kind, train_number, tick, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := p.db.ExecContext(ctx, q, rec.ID, string(rec.Kind), trainNumber, rec.Tick, payload, rec.At.UTC()); err != nil {
		return fmt.Errorf("insert journal record %s: %w", rec.ID, err)
	}
	return nil
}

func (p *PGSink) Close() error { return nil }
