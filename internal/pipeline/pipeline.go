package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"continuum-report/internal/config"
	"continuum-report/internal/model"
	"continuum-report/internal/render"
	"continuum-report/pkg/utils"
)

// dataset carries one input table through the run.
type dataset struct {
	spec    config.Dataset
	table   *LabeledTable
	summary *Summary
	corr    *Correlation
}

// ------------------- Pipeline Runner -------------------

// Run builds the report described by cfg. Every dataset is loaded, checked,
// indexed and aggregated first; then the bar charts are drawn in dataset
// order, then the correlation heatmaps, then the optional exports. The first
// stage failure stops the run and is returned as a *StageError. Charts are
// written to fixed names under the charts directory, so a rerun overwrites
// them.
func Run(ctx context.Context, runID string, cfg *config.Config, rec Recorder, logger *slog.Logger) (report *model.Report, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID)
	start := time.Now()
	logger.Info("starting report run", "datasets", len(cfg.Datasets), "charts_dir", cfg.ChartsDir())

	tracker := NewRunTracker(runID, rec, logger)
	tracker.SetStatus(model.StatusRunning)
	defer func() {
		if err != nil {
			tracker.Fail(err)
			return
		}
		tracker.Complete()
	}()

	output := utils.NewOutputManager(cfg.ChartsDir())
	if err := output.EnsureOutputDirExists(); err != nil {
		return nil, err
	}

	// --- INGESTION, VALIDATION, TRANSFORMATION, AGGREGATION ---
	datasets := make([]*dataset, 0, len(cfg.Datasets))
	for _, spec := range cfg.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := prepareDataset(tracker, logger, cfg.SourceDir(), spec)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}

	// --- BAR CHARTS ---
	var charts []string
	for _, d := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := output.ChartPath(d.spec.Bar.Filename)
		err := tracker.Stage(d.spec.Name, model.StageBarChart, func() (int, error) {
			return len(d.summary.Stats), render.BarChart(d.summary.Sorted(), path, d.spec.Bar.Title, cfg.Style.Bar)
		})
		if err != nil {
			return nil, err
		}
		tracker.AddArtifact(newArtifact(output, model.ArtifactBarChart, d.spec.Name, path, d.spec.Bar.Title))
		charts = append(charts, path)
	}

	// --- CORRELATION HEATMAPS ---
	for _, d := range datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := output.ChartPath(d.spec.Correlation.Filename)
		err := tracker.Stage(d.spec.Name, model.StageCorrelation, func() (int, error) {
			c, err := Correlate(d.table)
			if err != nil {
				return 0, err
			}
			d.corr = c
			return c.Size(), render.Heatmap(c.Labels, c.Matrix, path, d.spec.Correlation.Title, cfg.Style.Heatmap)
		})
		if err != nil {
			return nil, err
		}
		tracker.AddArtifact(newArtifact(output, model.ArtifactCorrelation, d.spec.Name, path, d.spec.Correlation.Title))
		charts = append(charts, path)
	}

	// --- EXPORT ---
	exporter := NewExportManager(cfg.Export, output)
	if exporter.Enabled() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := runExports(tracker, exporter, output, datasets); err != nil {
			return nil, err
		}
	}

	// --- DISPLAY ---
	if cfg.Show {
		if err := render.Show(ctx, charts...); err != nil {
			logger.Warn("could not display charts", "error", err)
		}
	}

	report = &model.Report{
		RunID:     runID,
		StartedAt: start.UTC(),
		Duration:  time.Since(start),
		Artifacts: tracker.Artifacts(),
	}
	for _, d := range datasets {
		report.Datasets = append(report.Datasets, model.DatasetSummary{
			Name:       d.spec.Name,
			Rows:       d.summary.Rows,
			Categories: d.summary.Sorted(),
		})
	}
	return report, nil
}

// prepareDataset loads, validates, indexes and aggregates one table.
func prepareDataset(tracker *RunTracker, logger *slog.Logger, srcDir string, spec config.Dataset) (*dataset, error) {
	d := &dataset{spec: spec}

	err := tracker.Stage(spec.Name, model.StageIngestion, func() (int, error) {
		t, err := loadTable(spec.File, srcDir, spec.Sheet)
		if err != nil {
			return 0, err
		}
		t.Name = spec.Name
		d.table = t
		return t.Rows(), nil
	})
	if err != nil {
		return nil, err
	}

	err = tracker.Stage(spec.Name, model.StageValidation, func() (int, error) {
		warnings, err := ValidateTable(d.table, spec)
		for _, w := range warnings {
			logger.Warn("suspicious indicator values", "dataset", spec.Name, "detail", w)
		}
		return len(d.table.Columns()), err
	})
	if err != nil {
		return nil, err
	}

	err = tracker.Stage(spec.Name, model.StageTransform, func() (int, error) {
		return len(d.table.Columns()), PrepareTable(d.table, spec)
	})
	if err != nil {
		return nil, err
	}

	err = tracker.Stage(spec.Name, model.StageAggregation, func() (int, error) {
		s, err := Aggregate(d.table)
		if err != nil {
			return 0, err
		}
		d.summary = s
		return len(s.Stats), nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// runExports writes the per-dataset CSV summaries and the workbook.
func runExports(tracker *RunTracker, exporter *ExportManager, output *utils.OutputManager, datasets []*dataset) error {
	if exporter.Spec.CSV {
		for _, d := range datasets {
			var result model.ExportResult
			err := tracker.Stage(d.spec.Name, model.StageExport, func() (int, error) {
				result = exporter.ExportSummaryCSV(d.summary)
				return result.RecordCount, exportErr(result)
			})
			if err != nil {
				return err
			}
			tracker.AddArtifact(newArtifact(output, model.ArtifactSummaryCSV, d.spec.Name, result.Path, ""))
		}
	}

	if exporter.Spec.XLSX {
		summaries := make([]*Summary, len(datasets))
		corrs := make([]*Correlation, 0, len(datasets))
		for i, d := range datasets {
			summaries[i] = d.summary
			if d.corr != nil {
				corrs = append(corrs, d.corr)
			}
		}
		var result model.ExportResult
		err := tracker.Stage("", model.StageExport, func() (int, error) {
			result = exporter.ExportWorkbook(summaries, corrs)
			return result.RecordCount, exportErr(result)
		})
		if err != nil {
			return err
		}
		tracker.AddArtifact(newArtifact(output, model.ArtifactWorkbook, "", result.Path, ""))
	}
	return nil
}

func exportErr(result model.ExportResult) error {
	if result.Success {
		return nil
	}
	return fmt.Errorf("%s export to %s: %s", result.Type, result.Path, result.Error)
}

func newArtifact(output *utils.OutputManager, kind, dataset, path, title string) model.Artifact {
	size, _ := output.GetFileSize(path)
	return model.Artifact{
		Kind:      kind,
		Dataset:   dataset,
		Path:      path,
		Title:     title,
		SizeBytes: size,
		CreatedAt: time.Now().UTC(),
	}
}
