// Package pipeline composes the stages of one run: source, clean,
// aggregate, model, measures, export and the optional mart load. Each
// stage is a pure function from the previous stage's output; the
// orchestration here only adds timing, logging and metrics.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"salesmart/internal/aggregate"
	"salesmart/internal/config"
	"salesmart/internal/dax"
	"salesmart/internal/export"
	"salesmart/internal/generator"
	"salesmart/internal/ingest"
	"salesmart/internal/metrics"
	"salesmart/internal/sales"
	"salesmart/internal/star"
	"salesmart/internal/storage"
)

// Result carries everything one run produced.
type Result struct {
	Dataset  *sales.Dataset
	Tables   []*aggregate.Table
	Model    *star.Model
	Measures []dax.Measure
	Failures []*dax.BindingError
	Manifest *export.Manifest

	// StorageRows is the total row count loaded into the mart, zero when
	// no storage backend is configured.
	StorageRows int64

	Duration time.Duration
}

// Run executes one full pipeline run.
//
// The caller is expected to have validated cfg (config.Validate) first;
// Run still fails cleanly on bad values, but with less helpful messages.
//
// Errors: *ingest.SchemaError for structural input failures,
// *sales.ParameterError for bad parameters, ctx.Err() on cancellation.
// A degenerate (zero-row) dataset is NOT an error; the result carries the
// flag and empty outputs.
func Run(ctx context.Context, cfg config.Pipeline) (*Result, error) {
	started := time.Now()
	res := &Result{}

	err := stage("source", func() error {
		ds, err := source(ctx, cfg)
		res.Dataset = ds
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.RecordsTotal, float64(len(res.Dataset.Records)), metrics.Labels{"kind": "accepted"})
	metrics.IncCounter(metrics.RecordsTotal, float64(len(res.Dataset.Rejected)), metrics.Labels{"kind": "rejected"})
	if res.Dataset.Degenerate {
		log.Printf("stage=source degenerate=true rejected=%d", len(res.Dataset.Rejected))
	}

	err = stage("aggregate", func() error {
		g, err := aggregate.ParseGranularity(cfg.Analysis.Granularity)
		if err != nil {
			return err
		}
		period, err := aggregate.ByPeriod(res.Dataset, g)
		if err != nil {
			return err
		}
		res.Tables = []*aggregate.Table{
			period,
			aggregate.ByCategory(res.Dataset),
			aggregate.BySubcategory(res.Dataset),
			aggregate.ByRegion(res.Dataset),
			aggregate.ByWeekday(res.Dataset),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = stage("model", func() error {
		res.Model = star.Build(res.Dataset)
		return nil
	})

	_ = stage("measures", func() error {
		res.Measures, res.Failures = dax.Synthesize(
			res.Model.Schema(), dax.DefaultTemplates(cfg.Analysis.TopN))
		for _, f := range res.Failures {
			log.Printf("stage=measures binding_failure template=%q reference=%q", f.Template, f.Reference)
		}
		return nil
	})

	err = stage("export", func() error {
		man, err := export.WriteAll(cfg.Export.Dir, export.Bundle{
			Dataset:     res.Dataset,
			Tables:      res.Tables,
			Model:       res.Model,
			Measures:    res.Measures,
			Failures:    res.Failures,
			ScriptTitle: "Sales Mart Measures",
			Workbook:    cfg.Export.Workbook,
			Theme:       cfg.Export.Theme,
		})
		res.Manifest = man
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Kind != "" {
		err = stage("store", func() error {
			n, err := load(ctx, cfg.Storage, res.Model)
			res.StorageRows = n
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(started)
	log.Printf("stage=run ok records=%d rejected=%d duration=%s",
		len(res.Dataset.Records), len(res.Dataset.Rejected), res.Duration)
	return res, nil
}

// source builds the dataset, from the configured file or the generator.
func source(ctx context.Context, cfg config.Pipeline) (*sales.Dataset, error) {
	if cfg.Source.Path != "" {
		f, err := os.Open(cfg.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		return ingest.Clean(ctx, f, cfg.Source.Options())
	}

	start, end := cfg.Generator.Window()
	records, err := generator.Generate(generator.Config{
		Count: cfg.Generator.Count,
		Seed:  cfg.Generator.Seed,
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, err
	}
	ds := &sales.Dataset{Records: records}
	if len(ds.Records) == 0 {
		ds.Degenerate = true
	}
	return ds, nil
}

// load pushes the star schema into the configured mart backend.
func load(ctx context.Context, cfg config.Storage, m *star.Model) (int64, error) {
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Kind, DSN: cfg.DSN})
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	loads := storage.ModelTables(m)
	specs := make([]storage.TableSpec, len(loads))
	for i, l := range loads {
		specs[i] = l.Spec
	}
	if err := repo.EnsureSchema(ctx, specs); err != nil {
		return 0, err
	}

	// Clear in reverse load order (fact before dimensions) so a refresh
	// of an existing mart never orphans fact rows under enforced foreign
	// keys, then insert dimensions-first.
	for i := len(loads) - 1; i >= 0; i-- {
		if err := repo.ClearRows(ctx, loads[i].Spec.Name); err != nil {
			return 0, fmt.Errorf("clear %s: %w", loads[i].Spec.Name, err)
		}
	}

	var total int64
	for _, l := range loads {
		n, err := repo.InsertRows(ctx, l.Spec.Name, l.Columns, l.Rows)
		if err != nil {
			return total, fmt.Errorf("load %s: %w", l.Spec.Name, err)
		}
		total += n
	}
	return total, nil
}

// stage wraps one pipeline stage with timing, logging and metrics.
func stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	dur := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := metrics.Labels{"stage": name, "status": status}
	metrics.IncCounter(metrics.StageTotal, 1, labels)
	metrics.ObserveHistogram(metrics.StageDurationSeconds, dur.Seconds(), labels)

	if err != nil {
		log.Printf("stage=%s status=error duration=%s err=%v", name, dur, err)
		return err
	}
	log.Printf("stage=%s status=ok duration=%s", name, dur)
	return nil
}
