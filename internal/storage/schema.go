package storage

// Generic column types. Backends translate these to their own SQL types.
const (
	TypeText   = "text"
	TypeInt    = "integer"
	TypeBigInt = "bigint"
	TypeDouble = "double"
	TypeBool   = "boolean"
	TypeDate   = "date"
)

type ColumnSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
	// References names "table(column)" for a foreign key edge.
	References string `json:"references,omitempty"`
}

// TableSpec describes one mart table. It lives in this package so the
// model mapping and the backends can share it without circular imports.
type TableSpec struct {
	Name       string       `json:"name"`
	PrimaryKey string       `json:"primary_key,omitempty"` // column name, no auto-generation
	Columns    []ColumnSpec `json:"columns"`
}

// ColumnNames returns the column list in spec order.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
