package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"go.uber.org/zap"

	"github.com/your-org/wwtp-flow-predictor/internal/evaluation"
)

// SQLRepository stores runs through database/sql. Queries are written with
// "?" placeholders and rebound for PostgreSQL.
type SQLRepository struct {
	db       *sql.DB
	postgres bool
	logger   *zap.Logger
}

// Open connects to the database, applies migrations and returns a repository.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLRepository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to run store: %w", err)
	}
	if err := Migrate(db, driver, logger); err != nil {
		db.Close()
		return nil, err
	}
	return NewSQLRepository(db, driver, logger), nil
}

// NewSQLRepository wraps an already migrated database handle.
func NewSQLRepository(db *sql.DB, driver string, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{db: db, postgres: driver == DriverPostgres, logger: logger}
}

func (r *SQLRepository) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// RecordTraining stores a training run and returns its id.
func (r *SQLRepository) RecordTraining(ctx context.Context, run TrainingRun) (int64, error) {
	features, err := json.Marshal(run.Features)
	if err != nil {
		return 0, fmt.Errorf("failed to encode features: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := r.rebind(`
        INSERT INTO training_runs
            (model_version, family, target, features, artifact_path, train_size, test_size, mae, mse, rmse, r2, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id;
    `)
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		run.ModelVersion, run.Family, run.Target, string(features), run.ArtifactPath,
		run.TrainSize, run.TestSize,
		run.Metrics.MAE, run.Metrics.MSE, run.Metrics.RMSE, run.Metrics.R2,
		run.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert training run: %w", err)
	}
	r.logger.Debug("Training run recorded", zap.Int64("id", id), zap.String("model_version", run.ModelVersion))
	return id, nil
}

// TrainingRuns returns the training runs of one model version, oldest first.
func (r *SQLRepository) TrainingRuns(ctx context.Context, modelVersion string) ([]TrainingRun, error) {
	query := r.rebind(`
        SELECT id, model_version, family, target, features, artifact_path, train_size, test_size, mae, mse, rmse, r2, created_at
        FROM training_runs
        WHERE model_version = ?
        ORDER BY id ASC;
    `)
	rows, err := r.db.QueryContext(ctx, query, modelVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var (
			run      TrainingRun
			features string
			m        evaluation.Metrics
		)
		if err := rows.Scan(&run.ID, &run.ModelVersion, &run.Family, &run.Target, &features, &run.ArtifactPath,
			&run.TrainSize, &run.TestSize, &m.MAE, &m.MSE, &m.RMSE, &m.R2, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &run.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features of training run %d: %w", run.ID, err)
		}
		run.Metrics = m
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordPrediction stores a prediction run and returns its id.
func (r *SQLRepository) RecordPrediction(ctx context.Context, run PredictionRun) (int64, error) {
	inputs, err := json.Marshal(run.Inputs)
	if err != nil {
		return 0, fmt.Errorf("failed to encode inputs: %w", err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := r.rebind(`
        INSERT INTO prediction_runs (model_version, inputs, predicted, actual, error, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id;
    `)
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		run.ModelVersion, string(inputs), nullFloat(run.Predicted), nullFloat(run.Actual), run.Error, run.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert prediction run: %w", err)
	}
	return id, nil
}

// RecordActual attaches the observed value to a prediction run.
func (r *SQLRepository) RecordActual(ctx context.Context, id int64, actual float64) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE prediction_runs SET actual = ? WHERE id = ?;`), actual, id)
	if err != nil {
		return fmt.Errorf("failed to update prediction run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update prediction run %d: %w", id, err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// PredictionRuns returns the prediction runs of one model version, oldest first.
func (r *SQLRepository) PredictionRuns(ctx context.Context, modelVersion string) ([]PredictionRun, error) {
	query := r.rebind(`
        SELECT id, model_version, inputs, predicted, actual, error, created_at
        FROM prediction_runs
        WHERE model_version = ?
        ORDER BY id ASC;
    `)
	rows, err := r.db.QueryContext(ctx, query, modelVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction runs: %w", err)
	}
	defer rows.Close()

	var runs []PredictionRun
	for rows.Next() {
		var (
			run               PredictionRun
			inputs            string
			predicted, actual sql.NullFloat64
		)
		if err := rows.Scan(&run.ID, &run.ModelVersion, &inputs, &predicted, &actual, &run.Error, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction run: %w", err)
		}
		if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
			return nil, fmt.Errorf("failed to decode inputs of prediction run %d: %w", run.ID, err)
		}
		run.Predicted = floatPtr(predicted)
		run.Actual = floatPtr(actual)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Analytics summarises the prediction runs of one model version.
func (r *SQLRepository) Analytics(ctx context.Context, modelVersion string) (ModelAnalytics, error) {
	runs, err := r.PredictionRuns(ctx, modelVersion)
	if err != nil {
		return ModelAnalytics{}, err
	}
	return Summarize(modelVersion, runs), nil
}

// Close closes the database handle.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
