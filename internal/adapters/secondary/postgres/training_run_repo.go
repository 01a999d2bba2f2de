package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mnist-dashboard/internal/core/domain"
	output "mnist-dashboard/internal/core/ports/output"
)

type trainingRunRepo struct {
	pool *pgxpool.Pool
}

// NewTrainingRunRepository creates a new TrainingRunRepository
func NewTrainingRunRepository(pool *pgxpool.Pool) output.TrainingRunRepository {
	return &trainingRunRepo{pool: pool}
}

const trainingRunColumns = `
	id, started_at, finished_at, architecture, hyperparameters,
	train_samples, validation_samples, test_samples,
	final_loss, validation_accuracy, test_accuracy, status`

func (r *trainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	hpJSON, err := json.Marshal(run.Hyperparameters)
	if err != nil {
		return fmt.Errorf("marshal hyperparameters: %w", err)
	}

	query := `
		INSERT INTO training_run
			(` + trainingRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.Architecture, hpJSON,
		run.TrainSamples, run.ValidationSamples, run.TestSamples,
		run.FinalLoss, run.ValidationAccuracy, run.TestAccuracy, string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("create training run: %w", err)
	}
	return nil
}

func (r *trainingRunRepo) GetLatest(ctx context.Context) (*domain.TrainingRun, error) {
	query := `SELECT ` + trainingRunColumns + `
		FROM training_run
		ORDER BY finished_at DESC
		LIMIT 1
	`

	run, err := scanTrainingRun(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("get latest training run: %w", err)
	}
	return run, nil
}

func (r *trainingRunRepo) List(ctx context.Context, filter output.RunListFilter) ([]*domain.TrainingRun, error) {
	query, args := listQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list training runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.TrainingRun
	for rows.Next() {
		run, err := scanTrainingRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan training run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training run rows: %w", err)
	}

	return runs, nil
}

// listQuery builds the SELECT for List with numbered placeholders for the
// optional status filter and limit.
func listQuery(filter output.RunListFilter) (string, []interface{}) {
	args := []interface{}{}
	where := ""
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = fmt.Sprintf("WHERE status = $%d", len(args))
	}
	limit := ""
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		limit = fmt.Sprintf("LIMIT $%d", len(args))
	}

	query := fmt.Sprintf(`SELECT %s
		FROM training_run
		%s
		ORDER BY finished_at DESC
		%s
	`, trainingRunColumns, where, limit)
	return query, args
}

func scanTrainingRun(row pgx.Row) (*domain.TrainingRun, error) {
	var run domain.TrainingRun
	var hpJSON []byte
	var status string

	err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.Architecture, &hpJSON,
		&run.TrainSamples, &run.ValidationSamples, &run.TestSamples,
		&run.FinalLoss, &run.ValidationAccuracy, &run.TestAccuracy, &status,
	)
	if err != nil {
		return nil, err
	}

	if len(hpJSON) > 0 {
		if err := json.Unmarshal(hpJSON, &run.Hyperparameters); err != nil {
			return nil, fmt.Errorf("unmarshal hyperparameters: %w", err)
		}
	}
	run.Status = domain.RunStatus(status)
	return &run, nil
}
