package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if issues := Validate(Defaults()); len(issues) != 0 {
		t.Fatalf("default config has issues: %v", issues)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	cfg := Defaults()
	cfg.Generator.Count = 0
	cfg.Source.Encoding = "ebcdic"
	cfg.Analysis.Granularity = "fortnight"
	cfg.Export.Dir = ""
	cfg.Storage.Kind = "oracle"
	cfg.Metrics.Backend = "statsd"
	cfg.Generator.Start = "01/02/2024"

	issues := Validate(cfg)
	fields := make(map[string]Severity, len(issues))
	for _, is := range issues {
		fields[is.Field] = is.Severity
	}
	for _, f := range []string{
		"generator.count", "source.encoding", "analysis.granularity",
		"export.dir", "storage.kind", "metrics.backend", "generator.start",
	} {
		if fields[f] != SeverityError {
			t.Errorf("expected error issue for %s, got %v", f, fields[f])
		}
	}
}

func TestValidateStorageNeedsDSN(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Kind = "sqlite"
	issues := Validate(cfg)
	if len(issues) != 1 || issues[0].Field != "storage.dsn" {
		t.Fatalf("issues = %v, want single storage.dsn error", issues)
	}
}

func TestValidateTopNWarning(t *testing.T) {
	cfg := Defaults()
	cfg.Analysis.TopN = 0
	issues := Validate(cfg)
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("issues = %v, want single warning", issues)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Fatalf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	body := `
source:
  path: sales.csv
  encoding: windows-1252
analysis:
  granularity: week
storage:
  kind: sqlite
  dsn: file:mart.db
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Path != "sales.csv" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
	if cfg.Source.Encoding != "windows-1252" {
		t.Errorf("Source.Encoding = %q", cfg.Source.Encoding)
	}
	if cfg.Analysis.Granularity != "week" {
		t.Errorf("Analysis.Granularity = %q", cfg.Analysis.Granularity)
	}
	if cfg.Storage.Kind != "sqlite" || cfg.Storage.DSN != "file:mart.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	// Unnamed keys keep their defaults.
	if cfg.Generator.Count != 1000 {
		t.Errorf("Generator.Count = %d, want default 1000", cfg.Generator.Count)
	}
	if cfg.Analysis.TopN != 10 {
		t.Errorf("Analysis.TopN = %d, want default 10", cfg.Analysis.TopN)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSourceOptions(t *testing.T) {
	s := Source{Comma: ";", Encoding: "latin-1", HeaderMap: map[string]string{"preco": "unit_price"}}
	o := s.Options()
	if got := o.Rune("comma", ','); got != ';' {
		t.Errorf("comma = %q", got)
	}
	if got := o.String("encoding", "utf-8"); got != "latin-1" {
		t.Errorf("encoding = %q", got)
	}
	if got := o.StringMap("header_map"); got["preco"] != "unit_price" {
		t.Errorf("header_map = %v", got)
	}
}

func TestOptionsAccessorDefaults(t *testing.T) {
	o := Options{"n": int64(7), "flag": true}
	if got := o.Int("n", 0); got != 7 {
		t.Errorf("Int = %d", got)
	}
	if got := o.Int("missing", 3); got != 3 {
		t.Errorf("Int default = %d", got)
	}
	if !o.Bool("flag", false) {
		t.Error("Bool = false")
	}
	if got := o.Rune("missing", ','); got != ',' {
		t.Errorf("Rune default = %q", got)
	}
	if got := o.StringMap("missing"); got != nil {
		t.Errorf("StringMap = %v, want nil", got)
	}
}

func TestGeneratorWindow(t *testing.T) {
	g := Generator{Start: "2024-01-01", End: "2024-06-30"}
	start, end := g.Window()
	if start.IsZero() || end.IsZero() {
		t.Fatal("expected non-zero window")
	}
	if start.Year() != 2024 || end.Month() != 6 {
		t.Fatalf("window = %v..%v", start, end)
	}

	start, end = Generator{}.Window()
	if !start.IsZero() || !end.IsZero() {
		t.Fatal("unset window should be zero times")
	}
}
