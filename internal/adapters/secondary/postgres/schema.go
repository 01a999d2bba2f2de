package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS training_run (
	id                  UUID PRIMARY KEY,
	started_at          TIMESTAMPTZ NOT NULL,
	finished_at         TIMESTAMPTZ NOT NULL,
	architecture        TEXT NOT NULL,
	hyperparameters     JSONB NOT NULL DEFAULT '{}',
	train_samples       INTEGER NOT NULL,
	validation_samples  INTEGER NOT NULL,
	test_samples        INTEGER NOT NULL,
	final_loss          DOUBLE PRECISION NOT NULL,
	validation_accuracy DOUBLE PRECISION NOT NULL,
	test_accuracy       DOUBLE PRECISION NOT NULL,
	status              TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS training_run_finished_at_idx ON training_run (finished_at DESC);
`

// Migrate creates the tables used by the repositories.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
