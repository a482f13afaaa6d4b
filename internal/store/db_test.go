package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"continuum-report/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	cfg := map[string]string{"graphs_dir": "graphs"}
	if err := s.SaveRun("run-1", cfg); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	run, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != model.StatusPending {
		t.Errorf("new run status = %q, want %q", run.Status, model.StatusPending)
	}
	if !strings.Contains(run.Config, `"graphs_dir":"graphs"`) {
		t.Errorf("config snapshot = %q", run.Config)
	}

	if err := s.UpdateRunStatus("run-1", model.StatusCompleted); err != nil {
		t.Fatalf("UpdateRunStatus() error = %v", err)
	}
	run, _ = s.GetRun("run-1")
	if run.Status != model.StatusCompleted {
		t.Errorf("status = %q, want %q", run.Status, model.StatusCompleted)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetRun("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(missing) error = %v, want ErrRunNotFound", err)
	}
	if err := s.UpdateRunStatus("missing", model.StatusFailed); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("UpdateRunStatus(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("empty ledger listed %d runs", len(runs))
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveRun(id, nil); err != nil {
			t.Fatal(err)
		}
	}
	runs, err = s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != "c" {
		t.Errorf("newest run = %q, want c", runs[0].ID)
	}
}

func TestStagesArtifactsAndErrors(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveRun("run-1", nil); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	end := start.Add(time.Second)
	stages := []model.StageProgress{
		{Stage: model.StageIngestion, Dataset: "datatype", Status: model.StatusCompleted, StartTime: start, EndTime: &end, Items: 3},
		{Stage: model.StageAggregation, Dataset: "datatype", Status: model.StatusFailed, StartTime: start},
	}
	for _, p := range stages {
		if err := s.SaveStageProgress("run-1", p); err != nil {
			t.Fatalf("SaveStageProgress() error = %v", err)
		}
	}

	got, err := s.ListStages("run-1")
	if err != nil {
		t.Fatalf("ListStages() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListStages() returned %d stages, want 2", len(got))
	}
	if got[0].Stage != model.StageIngestion || got[0].Items != 3 || got[0].EndTime == nil || !got[0].EndTime.Equal(end) {
		t.Errorf("first stage = %+v", got[0])
	}
	if got[1].EndTime != nil {
		t.Errorf("unfinished stage has end time %v", got[1].EndTime)
	}

	a := model.Artifact{Kind: model.ArtifactBarChart, Dataset: "datatype", Path: "graphs/barplot_datatype.png", Title: "Nome maneiro", SizeBytes: 42, CreatedAt: start}
	if err := s.SaveArtifact("run-1", a); err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}
	artifacts, err := s.ListArtifacts("run-1")
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Path != a.Path || artifacts[0].SizeBytes != 42 {
		t.Errorf("ListArtifacts() = %+v", artifacts)
	}

	if err := s.SaveRunError("run-1", nil); err != nil {
		t.Errorf("SaveRunError(nil) error = %v", err)
	}
	if err := s.SaveRunError("run-1", errors.New("boom")); err != nil {
		t.Fatal(err)
	}
	errs, err := s.ListRunErrors("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 1 || errs[0].Message != "boom" {
		t.Errorf("ListRunErrors() = %+v", errs)
	}

	// Other runs see nothing.
	if other, _ := s.ListArtifacts("run-2"); len(other) != 0 {
		t.Errorf("run-2 artifacts = %+v", other)
	}
}
