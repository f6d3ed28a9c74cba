package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads a pipeline config file, layered over Defaults. YAML and JSON
// are both accepted (JSON is parsed by the YAML parser). An empty path
// returns the defaults unchanged.
func Load(path string) (Pipeline, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// defaultsMap mirrors Defaults as koanf keys so a partial file only
// overrides what it names.
func defaultsMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"source.encoding":       d.Source.Encoding,
		"source.comma":          d.Source.Comma,
		"generator.count":       d.Generator.Count,
		"analysis.granularity":  d.Analysis.Granularity,
		"analysis.top_n":        d.Analysis.TopN,
		"export.dir":            d.Export.Dir,
		"export.workbook":       d.Export.Workbook,
		"export.theme":          d.Export.Theme,
		"metrics.backend":       d.Metrics.Backend,
		"metrics.flush_seconds": d.Metrics.FlushSeconds,
	}
}
