package observability

import (
	"time"

	"github.com/prefeitura-sp/app-sicap/internal/logging"
	"go.uber.org/zap"
)

// Checkpoint is one finished stage of a run.
type Checkpoint struct {
	Stage    string
	Status   string
	Duration time.Duration
}

// StageTimer times consecutive pipeline stages. Each Mark closes the stage
// started by the previous Mark (or by the timer itself).
type StageTimer struct {
	operation   string
	logger      *logging.SafeLogger
	start       time.Time
	last        time.Time
	checkpoints []Checkpoint
}

// NewStageTimer starts timing operation.
func NewStageTimer(operation string, logger *logging.SafeLogger) *StageTimer {
	now := time.Now()
	return &StageTimer{
		operation:   operation,
		logger:      logger,
		start:       now,
		last:        now,
		checkpoints: make([]Checkpoint, 0, 8),
	}
}

// Mark records the end of stage with status and updates the stage metrics.
func (t *StageTimer) Mark(stage, status string) {
	now := time.Now()
	cp := Checkpoint{Stage: stage, Status: status, Duration: now.Sub(t.last)}
	t.last = now
	t.checkpoints = append(t.checkpoints, cp)

	PipelineStages.WithLabelValues(stage, status).Inc()
	PipelineStageDuration.WithLabelValues(stage).Observe(cp.Duration.Seconds())

	t.logger.Debug("pipeline stage",
		zap.String("operation", t.operation),
		zap.String("stage", stage),
		zap.String("status", status),
		zap.Duration("duration", cp.Duration))
}

// Checkpoints returns the stages marked so far.
func (t *StageTimer) Checkpoints() []Checkpoint {
	return t.checkpoints
}

// End logs the total duration and the stage breakdown.
func (t *StageTimer) End() {
	stages := make([]string, 0, len(t.checkpoints))
	for _, cp := range t.checkpoints {
		stages = append(stages, cp.Stage+"="+cp.Status+"("+cp.Duration.Round(time.Millisecond).String()+")")
	}
	t.logger.Info("pipeline timing",
		zap.String("operation", t.operation),
		zap.Duration("total_duration", time.Since(t.start)),
		zap.Strings("stages", stages))
}
