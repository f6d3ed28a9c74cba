package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"salesmart/internal/aggregate"
	"salesmart/internal/dax"
	"salesmart/internal/sales"
	"salesmart/internal/star"
)

// Artifact file names not owned by other writers.
const (
	ManifestFile   = "manifest.json"
	RejectionsFile = "rejected_rows.csv"
)

// Bundle carries everything one run exports.
type Bundle struct {
	Dataset  *sales.Dataset
	Tables   []*aggregate.Table
	Model    *star.Model
	Measures []dax.Measure
	Failures []*dax.BindingError

	ScriptTitle string
	Workbook    bool
	Theme       bool
}

// Artifact is one exported file with its row count (0 for non-tabular
// artifacts).
type Artifact struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// BindingFailure mirrors a dax.BindingError for the manifest.
type BindingFailure struct {
	Template  string `json:"template"`
	Reference string `json:"reference"`
}

// Manifest summarizes one export run. Degenerate distinguishes "no
// errors, just no data" from a hidden failure.
type Manifest struct {
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`

	Records         int            `json:"records"`
	Rejected        int            `json:"rejected"`
	RejectedReasons map[string]int `json:"rejected_reasons,omitempty"`
	Degenerate      bool           `json:"degenerate"`

	Artifacts       []Artifact       `json:"artifacts"`
	BindingFailures []BindingFailure `json:"binding_failures,omitempty"`
}

// WriteAll writes every artifact for a run into dir, creating it if
// needed, and finishes with the manifest. Artifacts keep fixed names;
// only the manifest's run id and timestamp differ between runs.
func WriteAll(dir string, b Bundle) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	now := time.Now()
	man := &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Records:     len(b.Dataset.Records),
		Rejected:    len(b.Dataset.Rejected),
		Degenerate:  b.Dataset.Degenerate,
	}

	for _, t := range b.Tables {
		name := "analysis_" + t.Name + ".csv"
		n, err := WriteTableCSV(filepath.Join(dir, name), t)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		man.Artifacts = append(man.Artifacts, Artifact{Name: name, Rows: n})
	}

	counts, err := WriteModelCSV(dir, b.Model)
	if err != nil {
		return nil, fmt.Errorf("write model: %w", err)
	}
	for _, name := range []string{FactFile, DateFile, ProductFile, CustomerFile} {
		man.Artifacts = append(man.Artifacts, Artifact{Name: name, Rows: counts[name]})
	}

	if err := WriteMeasures(filepath.Join(dir, MeasuresFile), b.ScriptTitle, b.Measures); err != nil {
		return nil, fmt.Errorf("write measures: %w", err)
	}
	man.Artifacts = append(man.Artifacts, Artifact{Name: MeasuresFile, Rows: len(b.Measures)})
	for _, f := range b.Failures {
		man.BindingFailures = append(man.BindingFailures, BindingFailure{
			Template: f.Template, Reference: f.Reference,
		})
	}

	if err := WriteMetadata(filepath.Join(dir, MetadataFile), b.Model, now); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}
	man.Artifacts = append(man.Artifacts, Artifact{Name: MetadataFile})

	if b.Workbook {
		if err := WriteWorkbook(filepath.Join(dir, WorkbookFile), b.Tables); err != nil {
			return nil, fmt.Errorf("write workbook: %w", err)
		}
		man.Artifacts = append(man.Artifacts, Artifact{Name: WorkbookFile})
	}
	if b.Theme {
		if err := WriteTheme(filepath.Join(dir, ThemeFile), DefaultTheme()); err != nil {
			return nil, fmt.Errorf("write theme: %w", err)
		}
		man.Artifacts = append(man.Artifacts, Artifact{Name: ThemeFile})
	}

	if len(b.Dataset.Rejected) > 0 {
		man.RejectedReasons = make(map[string]int)
		for _, r := range b.Dataset.Rejected {
			man.RejectedReasons[r.Reason]++
		}
		if err := writeRejections(filepath.Join(dir, RejectionsFile), b.Dataset.Rejected); err != nil {
			return nil, fmt.Errorf("write rejections: %w", err)
		}
		man.Artifacts = append(man.Artifacts, Artifact{Name: RejectionsFile, Rows: len(b.Dataset.Rejected)})
	}

	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return nil, err
	}
	return man, nil
}

// writeRejections dumps the rejection log so dropped rows stay auditable.
func writeRejections(path string, rejected []sales.RejectedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"line", "reason", "detail", "raw"}); err != nil {
		return err
	}
	for _, r := range rejected {
		raw, _ := json.Marshal(r.Raw)
		if err := w.Write([]string{strconv.Itoa(r.Line), r.Reason, r.Detail, string(raw)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
