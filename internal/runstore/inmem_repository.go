package runstore

import (
	"context"
	"sync"
	"time"
)

// InMemRepository is an in-memory implementation of Repository for testing.
type InMemRepository struct {
	mu          sync.RWMutex
	trainings   []TrainingRun
	predictions []PredictionRun
	now         func() time.Time
}

// NewInMemRepository creates a new InMemRepository.
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{now: func() time.Time { return time.Now().UTC() }}
}

// RecordTraining stores a training run and returns its id.
func (r *InMemRepository) RecordTraining(ctx context.Context, run TrainingRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = int64(len(r.trainings) + 1)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = r.now()
	}
	run.Features = append([]string(nil), run.Features...)
	r.trainings = append(r.trainings, run)
	return run.ID, nil
}

// RecordPrediction stores a prediction run and returns its id.
func (r *InMemRepository) RecordPrediction(ctx context.Context, run PredictionRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = int64(len(r.predictions) + 1)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = r.now()
	}
	run.Inputs = append([]float64(nil), run.Inputs...)
	r.predictions = append(r.predictions, run)
	return run.ID, nil
}

// RecordActual attaches the observed value to a prediction run.
func (r *InMemRepository) RecordActual(ctx context.Context, id int64, actual float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || int(id) > len(r.predictions) {
		return ErrRunNotFound
	}
	r.predictions[id-1].Actual = &actual
	return nil
}

// TrainingRuns returns all stored training runs in insertion order.
func (r *InMemRepository) TrainingRuns() []TrainingRun {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TrainingRun(nil), r.trainings...)
}

// PredictionRuns returns the prediction runs of one model version in insertion order.
func (r *InMemRepository) PredictionRuns(ctx context.Context, modelVersion string) ([]PredictionRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PredictionRun
	for _, p := range r.predictions {
		if p.ModelVersion == modelVersion {
			out = append(out, p)
		}
	}
	return out, nil
}

// Analytics summarises the prediction runs of one model version.
func (r *InMemRepository) Analytics(ctx context.Context, modelVersion string) (ModelAnalytics, error) {
	runs, err := r.PredictionRuns(ctx, modelVersion)
	if err != nil {
		return ModelAnalytics{}, err
	}
	return Summarize(modelVersion, runs), nil
}

// Close is a no-op.
func (r *InMemRepository) Close() error {
	return nil
}
