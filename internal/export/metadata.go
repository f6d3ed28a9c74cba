package export

import (
	"encoding/json"
	"os"
	"time"

	"salesmart/internal/star"
)

// MetadataFile is the model metadata artifact name.
const MetadataFile = "model_metadata.json"

type metadataTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

type metadataRelationship struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
	// Star relationships are always many fact rows to one dimension row.
	Cardinality string `json:"cardinality"`
}

type metadata struct {
	Model struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
		CreatedAt   string `json:"created_at"`
	} `json:"model"`
	Tables        []metadataTable        `json:"tables"`
	Relationships []metadataRelationship `json:"relationships"`
}

// WriteMetadata describes the model's tables, columns and relationships
// as JSON so the target tool can be wired without inspecting the CSVs.
func WriteMetadata(path string, m *star.Model, now time.Time) error {
	var md metadata
	md.Model.Name = "salesmart"
	md.Model.Description = "E-commerce sales star schema"
	md.Model.Version = "1.0.0"
	md.Model.CreatedAt = now.UTC().Format(time.RFC3339)

	rowCounts := map[string]int{
		star.FactTable:     len(m.Fact),
		star.DateTable:     len(m.Dates),
		star.ProductTable:  len(m.Products),
		star.CustomerTable: len(m.Customers),
	}
	for _, t := range m.Schema().Tables {
		md.Tables = append(md.Tables, metadataTable{
			Name:    t.Name,
			Columns: t.Columns,
			Rows:    rowCounts[t.Name],
		})
	}
	for _, r := range m.Relationships() {
		md.Relationships = append(md.Relationships, metadataRelationship{
			FromTable:   r.FromTable,
			FromColumn:  r.FromColumn,
			ToTable:     r.ToTable,
			ToColumn:    r.ToColumn,
			Cardinality: "many_to_one",
		})
	}

	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
