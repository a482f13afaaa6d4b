package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"continuum-report/internal/model"
)

// Recorder persists run progress; *store.Store implements it. Recording is
// best effort: a failing recorder is logged and never fails the run.
type Recorder interface {
	UpdateRunStatus(runID, status string) error
	SaveStageProgress(runID string, p model.StageProgress) error
	SaveArtifact(runID string, a model.Artifact) error
	SaveRunError(runID string, err error) error
}

// RunTracker times each stage of a run and forwards progress to a Recorder.
type RunTracker struct {
	RunID     string
	StartTime time.Time

	recorder  Recorder
	logger    *slog.Logger
	mu        sync.Mutex
	status    string
	stages    []model.StageProgress
	artifacts []model.Artifact
}

// NewRunTracker creates a tracker. rec may be nil.
func NewRunTracker(runID string, rec Recorder, logger *slog.Logger) *RunTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunTracker{
		RunID:     runID,
		StartTime: time.Now(),
		recorder:  rec,
		logger:    logger,
		status:    model.StatusPending,
	}
}

// Stage runs fn as one stage of one dataset. fn returns how many items it
// handled (rows, categories, files). Errors come back as *StageError.
func (rt *RunTracker) Stage(dataset, stage string, fn func() (int, error)) error {
	start := time.Now()
	rt.logger.Debug("stage started", "run_id", rt.RunID, "dataset", dataset, "stage", stage)

	items, err := fn()

	end := time.Now()
	p := model.StageProgress{
		Stage:     stage,
		Dataset:   dataset,
		Status:    model.StatusCompleted,
		StartTime: start,
		EndTime:   &end,
		Items:     items,
	}
	if err != nil {
		p.Status = model.StatusFailed
	}

	rt.mu.Lock()
	rt.stages = append(rt.stages, p)
	rt.mu.Unlock()

	if rt.recorder != nil {
		if rerr := rt.recorder.SaveStageProgress(rt.RunID, p); rerr != nil {
			rt.logger.Warn("failed to record stage", "run_id", rt.RunID, "stage", stage, "error", rerr)
		}
	}

	if err != nil {
		return stageErr(dataset, stage, err)
	}
	rt.logger.Info("stage completed",
		"run_id", rt.RunID,
		"dataset", dataset,
		"stage", stage,
		"items", items,
		"duration_ms", end.Sub(start).Milliseconds(),
	)
	return nil
}

// AddArtifact records a written file.
func (rt *RunTracker) AddArtifact(a model.Artifact) {
	rt.mu.Lock()
	rt.artifacts = append(rt.artifacts, a)
	rt.mu.Unlock()

	rt.logger.Info("artifact written", "run_id", rt.RunID, "kind", a.Kind, "path", a.Path)
	if rt.recorder != nil {
		if err := rt.recorder.SaveArtifact(rt.RunID, a); err != nil {
			rt.logger.Warn("failed to record artifact", "run_id", rt.RunID, "path", a.Path, "error", err)
		}
	}
}

// SetStatus updates the run status.
func (rt *RunTracker) SetStatus(status string) {
	rt.mu.Lock()
	rt.status = status
	rt.mu.Unlock()

	if rt.recorder != nil {
		if err := rt.recorder.UpdateRunStatus(rt.RunID, status); err != nil {
			rt.logger.Warn("failed to record status", "run_id", rt.RunID, "status", status, "error", err)
		}
	}
}

// Fail marks the run failed and records err.
func (rt *RunTracker) Fail(err error) {
	rt.SetStatus(model.StatusFailed)
	rt.logger.Error("run failed", "run_id", rt.RunID, "duration", time.Since(rt.StartTime), "error", err)
	if rt.recorder != nil {
		if rerr := rt.recorder.SaveRunError(rt.RunID, err); rerr != nil {
			rt.logger.Warn("failed to record error", "run_id", rt.RunID, "error", rerr)
		}
	}
}

// Complete marks the run completed.
func (rt *RunTracker) Complete() {
	rt.SetStatus(model.StatusCompleted)
	rt.logger.Info("run completed", "run_id", rt.RunID, "duration", time.Since(rt.StartTime))
}

// Status returns the current status.
func (rt *RunTracker) Status() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.status
}

// Stages returns the stages run so far.
func (rt *RunTracker) Stages() []model.StageProgress {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]model.StageProgress, len(rt.stages))
	copy(out, rt.stages)
	return out
}

// Artifacts returns the files written so far.
func (rt *RunTracker) Artifacts() []model.Artifact {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]model.Artifact, len(rt.artifacts))
	copy(out, rt.artifacts)
	return out
}
