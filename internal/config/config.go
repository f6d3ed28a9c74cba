// Package config holds the pipeline run configuration: explicit,
// serializable, passed into each stage by value. Nothing in the pipeline
// reads ambient global state, so two runs with equal configs are
// reproducible.
package config

import (
	"fmt"
	"time"
)

// Pipeline is the full configuration for one run.
type Pipeline struct {
	Source    Source    `koanf:"source"`
	Generator Generator `koanf:"generator"`
	Analysis  Analysis  `koanf:"analysis"`
	Export    Export    `koanf:"export"`
	Storage   Storage   `koanf:"storage"`
	Metrics   Metrics   `koanf:"metrics"`
}

// Source selects and describes the input file. An empty Path means the run
// uses the synthetic generator instead.
type Source struct {
	Path      string            `koanf:"path"`
	Encoding  string            `koanf:"encoding"` // utf-8 | windows-1252 | latin-1
	Comma     string            `koanf:"comma"`
	HeaderMap map[string]string `koanf:"header_map"`
}

// Generator configures synthetic input. Start/End use YYYY-MM-DD.
type Generator struct {
	Count int    `koanf:"count"`
	Seed  int64  `koanf:"seed"`
	Start string `koanf:"start"`
	End   string `koanf:"end"`
}

// Analysis selects the period grain for the period analysis table.
type Analysis struct {
	Granularity string `koanf:"granularity"`
	TopN        int    `koanf:"top_n"`
}

// Export configures the artifact directory and optional artifacts.
type Export struct {
	Dir      string `koanf:"dir"`
	Workbook bool   `koanf:"workbook"`
	Theme    bool   `koanf:"theme"`
}

// Storage optionally loads the star schema into a relational mart.
// An empty Kind disables the load.
type Storage struct {
	Kind string `koanf:"kind"` // sqlite | postgres | mssql
	DSN  string `koanf:"dsn"`
}

// Metrics selects the metrics backend for the run.
type Metrics struct {
	Backend      string `koanf:"backend"` // none | datadog
	Tags         string `koanf:"tags"`    // comma-separated k:v pairs
	FlushSeconds int    `koanf:"flush_seconds"`
}

// Granularities accepted by Analysis.Granularity.
var Granularities = []string{"day", "week", "month", "quarter", "year"}

// Defaults returns the baseline configuration merged under any loaded file.
func Defaults() Pipeline {
	return Pipeline{
		Source:    Source{Encoding: "utf-8", Comma: ","},
		Generator: Generator{Count: 1000},
		Analysis:  Analysis{Granularity: "month", TopN: 10},
		Export:    Export{Dir: "export", Workbook: true, Theme: true},
		Metrics:   Metrics{Backend: "none", FlushSeconds: 15},
	}
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Errors make the config unusable;
// warnings are surfaced and the run continues.
type Issue struct {
	Field    string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// Validate checks the config and returns every issue found, not just the
// first. Callers abort when any issue has SeverityError.
func Validate(cfg Pipeline) []Issue {
	var issues []Issue

	if cfg.Source.Path == "" && cfg.Generator.Count <= 0 {
		issues = append(issues, Issue{
			Field: "generator.count", Severity: SeverityError,
			Message: fmt.Sprintf("must be positive when no source path is set, got %d", cfg.Generator.Count),
		})
	}
	switch cfg.Source.Encoding {
	case "", "utf-8", "utf8", "windows-1252", "latin-1", "iso-8859-1":
	default:
		issues = append(issues, Issue{
			Field: "source.encoding", Severity: SeverityError,
			Message: fmt.Sprintf("unsupported encoding %q", cfg.Source.Encoding),
		})
	}
	if n := len([]rune(cfg.Source.Comma)); n > 1 {
		issues = append(issues, Issue{
			Field: "source.comma", Severity: SeverityError,
			Message: fmt.Sprintf("delimiter must be a single character, got %q", cfg.Source.Comma),
		})
	}

	if !granularityOK(cfg.Analysis.Granularity) {
		issues = append(issues, Issue{
			Field: "analysis.granularity", Severity: SeverityError,
			Message: fmt.Sprintf("must be one of %v, got %q", Granularities, cfg.Analysis.Granularity),
		})
	}
	if cfg.Analysis.TopN <= 0 {
		issues = append(issues, Issue{
			Field: "analysis.top_n", Severity: SeverityWarning,
			Message: "non-positive, measure synthesis falls back to 10",
		})
	}

	for _, d := range []struct{ field, val string }{
		{"generator.start", cfg.Generator.Start},
		{"generator.end", cfg.Generator.End},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.val); err != nil {
			issues = append(issues, Issue{
				Field: d.field, Severity: SeverityError,
				Message: fmt.Sprintf("not a YYYY-MM-DD date: %q", d.val),
			})
		}
	}

	if cfg.Export.Dir == "" {
		issues = append(issues, Issue{
			Field: "export.dir", Severity: SeverityError,
			Message: "must not be empty",
		})
	}

	switch cfg.Storage.Kind {
	case "", "sqlite", "postgres", "mssql":
		if cfg.Storage.Kind != "" && cfg.Storage.DSN == "" {
			issues = append(issues, Issue{
				Field: "storage.dsn", Severity: SeverityError,
				Message: fmt.Sprintf("required when storage.kind=%q", cfg.Storage.Kind),
			})
		}
	default:
		issues = append(issues, Issue{
			Field: "storage.kind", Severity: SeverityError,
			Message: fmt.Sprintf("unknown backend %q", cfg.Storage.Kind),
		})
	}

	switch cfg.Metrics.Backend {
	case "", "none", "datadog":
	default:
		issues = append(issues, Issue{
			Field: "metrics.backend", Severity: SeverityError,
			Message: fmt.Sprintf("unknown backend %q", cfg.Metrics.Backend),
		})
	}

	return issues
}

func granularityOK(g string) bool {
	for _, v := range Granularities {
		if g == v {
			return true
		}
	}
	return false
}

// SourceOptions converts the Source section into the option bag the
// ingestion layer consumes.
func (s Source) Options() Options {
	o := Options{}
	if s.Comma != "" {
		o["comma"] = s.Comma
	}
	if s.Encoding != "" {
		o["encoding"] = s.Encoding
	}
	if len(s.HeaderMap) > 0 {
		o["header_map"] = s.HeaderMap
	}
	return o
}

// GeneratorWindow parses the Start/End dates. Zero times are returned for
// unset fields; Validate has already rejected malformed values.
func (g Generator) Window() (start, end time.Time) {
	if g.Start != "" {
		start, _ = time.Parse("2006-01-02", g.Start)
	}
	if g.End != "" {
		end, _ = time.Parse("2006-01-02", g.End)
	}
	return start, end
}
