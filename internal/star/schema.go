package star

// Model table names as seen by exports, the relational mart and DAX
// measure bindings.
const (
	FactTable     = "fact_sales"
	DateTable     = "dim_date"
	ProductTable  = "dim_product"
	CustomerTable = "dim_customer"
)

// TableSchema describes one model table by name and column list.
type TableSchema struct {
	Name    string
	Columns []string
}

// Schema describes the whole model for consumers that bind to table and
// column names instead of rows, such as the measure synthesizer and the
// metadata export.
type Schema struct {
	Tables []TableSchema
}

// Schema reports the model's table and column names. The column lists
// match the headers the exporters write, so a binding validated here
// resolves in the exported artifacts too.
func (m *Model) Schema() Schema {
	return Schema{Tables: []TableSchema{
		{Name: FactTable, Columns: []string{
			"transaction_id", "date_key", "product_key", "customer_key",
			"quantity", "unit_price", "line_total",
		}},
		{Name: DateTable, Columns: []string{
			"date_key", "date", "year", "quarter", "semester", "month",
			"month_name", "day", "day_of_year", "week_of_year",
			"day_of_week", "day_name", "year_month", "year_quarter",
			"is_weekend",
		}},
		{Name: ProductTable, Columns: []string{
			"product_key", "product_id", "category", "subcategory",
		}},
		{Name: CustomerTable, Columns: []string{
			"customer_key", "customer_id", "region", "state",
		}},
	}}
}

// HasTable reports whether the schema contains a table.
func (s Schema) HasTable(name string) bool {
	for _, t := range s.Tables {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasColumn reports whether table.column exists in the schema.
func (s Schema) HasColumn(table, column string) bool {
	for _, t := range s.Tables {
		if t.Name != table {
			continue
		}
		for _, c := range t.Columns {
			if c == column {
				return true
			}
		}
	}
	return false
}

// Relationships lists the foreign-key edges of the star, fact side first.
type Relationship struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

// Relationships returns the three fact-to-dimension edges.
func (m *Model) Relationships() []Relationship {
	return []Relationship{
		{FactTable, "date_key", DateTable, "date_key"},
		{FactTable, "product_key", ProductTable, "product_key"},
		{FactTable, "customer_key", CustomerTable, "customer_key"},
	}
}
