package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"salesmart/internal/config"
	"salesmart/internal/export"
	"salesmart/internal/ingest"

	_ "salesmart/internal/storage/sqlite"
)

func baseConfig(t *testing.T) config.Pipeline {
	t.Helper()
	cfg := config.Defaults()
	cfg.Generator.Count = 200
	cfg.Generator.Seed = 42
	cfg.Generator.Start = "2024-01-01"
	cfg.Generator.End = "2024-06-30"
	cfg.Export.Dir = t.TempDir()
	cfg.Export.Workbook = false
	cfg.Export.Theme = false
	return cfg
}

func TestRunGeneratorSource(t *testing.T) {
	cfg := baseConfig(t)
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Dataset.Records) != 200 {
		t.Errorf("records = %d", len(res.Dataset.Records))
	}
	if len(res.Tables) != 5 {
		t.Errorf("tables = %d, want 5", len(res.Tables))
	}
	if res.Tables[0].Name != "period_month" {
		t.Errorf("first table = %s", res.Tables[0].Name)
	}
	if len(res.Model.Fact) != 200 {
		t.Errorf("fact rows = %d", len(res.Model.Fact))
	}
	if len(res.Measures) == 0 || len(res.Failures) != 0 {
		t.Errorf("measures = %d failures = %v", len(res.Measures), res.Failures)
	}
	if res.Manifest == nil || res.Manifest.Records != 200 {
		t.Fatalf("manifest = %+v", res.Manifest)
	}
	if res.StorageRows != 0 {
		t.Errorf("storage rows = %d with no backend", res.StorageRows)
	}
	if res.Duration <= 0 {
		t.Error("duration not recorded")
	}

	for _, name := range []string{export.ManifestFile, export.FactFile, export.MeasuresFile} {
		if _, err := os.Stat(filepath.Join(cfg.Export.Dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, export.WorkbookFile)); !os.IsNotExist(err) {
		t.Error("workbook written though disabled")
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	cfg1 := baseConfig(t)
	cfg2 := baseConfig(t)

	res1, err := Run(context.Background(), cfg1)
	if err != nil {
		t.Fatal(err)
	}
	res2, err := Run(context.Background(), cfg2)
	if err != nil {
		t.Fatal(err)
	}

	if res1.Dataset.TotalRevenue() != res2.Dataset.TotalRevenue() {
		t.Fatal("same seed produced different revenue")
	}
	if len(res1.Model.Products) != len(res2.Model.Products) {
		t.Fatal("same seed produced different product dimension")
	}
}

func TestRunFileSource(t *testing.T) {
	cfg := baseConfig(t)

	// Export a synthetic file, then re-run the pipeline over it.
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	input := filepath.Join(t.TempDir(), "sales.csv")
	if err := export.WriteRawCSV(input, res.Dataset.Records); err != nil {
		t.Fatal(err)
	}

	cfg2 := baseConfig(t)
	cfg2.Source.Path = input
	res2, err := Run(context.Background(), cfg2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res2.Dataset.Records) != len(res.Dataset.Records) {
		t.Fatalf("file run records = %d, want %d", len(res2.Dataset.Records), len(res.Dataset.Records))
	}
	if res2.Dataset.TotalRevenue() != res.Dataset.TotalRevenue() {
		t.Fatal("revenue changed through the file round trip")
	}
}

func TestRunDegenerateInput(t *testing.T) {
	input := filepath.Join(t.TempDir(), "bad.csv")
	body := "transaction_id,date,product_id,product_category,product_subcategory,customer_id,region,quantity,unit_price\n" +
		"TRX-1,not-a-date,PROD-1,C,S,CUST-1,SE,1,10\n"
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := baseConfig(t)
	cfg.Source.Path = input
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Dataset.Degenerate {
		t.Fatal("Degenerate not set")
	}
	if len(res.Model.Fact) != 0 {
		t.Fatalf("fact rows = %d", len(res.Model.Fact))
	}
	if !res.Manifest.Degenerate || res.Manifest.Rejected != 1 {
		t.Fatalf("manifest = %+v", res.Manifest)
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, export.RejectionsFile)); err != nil {
		t.Errorf("rejections file missing: %v", err)
	}
}

func TestRunSchemaError(t *testing.T) {
	input := filepath.Join(t.TempDir(), "short.csv")
	if err := os.WriteFile(input, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := baseConfig(t)
	cfg.Source.Path = input
	_, err := Run(context.Background(), cfg)
	var serr *ingest.SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want SchemaError", err)
	}
}

func TestRunBadGranularity(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Analysis.Granularity = "epoch"
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunStoresIntoMart(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Generator.Count = 50
	cfg.Storage.Kind = "sqlite"
	cfg.Storage.DSN = "file:" + filepath.Join(t.TempDir(), "mart.db") + "?_pragma=foreign_keys(1)"

	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := int64(len(res.Model.Fact) + len(res.Model.Dates) + len(res.Model.Products) + len(res.Model.Customers))
	if res.StorageRows != want {
		t.Fatalf("storage rows = %d, want %d", res.StorageRows, want)
	}

	// A second run against the same mart refreshes it in place; the fact
	// table is cleared before the dimensions it references.
	res2, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second run into existing mart: %v", err)
	}
	if res2.StorageRows != want {
		t.Fatalf("storage rows after refresh = %d, want %d", res2.StorageRows, want)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := filepath.Join(t.TempDir(), "sales.csv")
	body := "transaction_id,date,product_id,product_category,product_subcategory,customer_id,region,quantity,unit_price\n" +
		"TRX-1,2024-01-01,PROD-1,C,S,CUST-1,SE,1,10\n"
	if err := os.WriteFile(input, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := baseConfig(t)
	cfg.Source.Path = input
	_, err := Run(ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
