package postgres

import (
	"context"
	"fmt"

	"github.com/apex/log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id              BIGSERIAL PRIMARY KEY,
		category        TEXT NOT NULL,
		severity        SMALLINT NOT NULL CHECK (severity BETWEEN 1 AND 5),
		description     TEXT NOT NULL,
		latitude        DOUBLE PRECISION CHECK (latitude BETWEEN -90 AND 90),
		longitude       DOUBLE PRECISION CHECK (longitude BETWEEN -180 AND 180),
		area_name       TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		status          TEXT NOT NULL DEFAULT 'unresolved' CHECK (status IN ('unresolved', 'resolved')),
		area_importance DOUBLE PRECISION NOT NULL DEFAULT 1 CHECK (area_importance BETWEEN 0.5 AND 3)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_category ON complaints (category)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints (status)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints (created_at)`,
	`CREATE TABLE IF NOT EXISTS complaint_actions (
		id           BIGSERIAL PRIMARY KEY,
		complaint_id BIGINT NOT NULL REFERENCES complaints (id) ON DELETE CASCADE,
		action       TEXT NOT NULL CHECK (action IN ('unresolved', 'resolved')),
		actor        TEXT,
		notes        TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaint_actions_complaint ON complaint_actions (complaint_id, created_at)`,
}

// EnsureSchema creates the complaint tables and their indexes if missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: failed to apply schema: %w", err)
		}
	}
	log.Info("Database schema is up to date")
	return nil
}
