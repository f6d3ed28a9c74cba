package storage

import (
	"salesmart/internal/star"
)

// TableLoad pairs a table spec with the rows to load into it.
type TableLoad struct {
	Spec    TableSpec
	Columns []string
	Rows    [][]any
}

// ModelTables maps the star model onto mart table loads in insert order:
// dimensions first, fact last, so inserts satisfy the foreign keys.
// Clearing an existing mart walks the same slice backwards.
func ModelTables(m *star.Model) []TableLoad {
	dateSpec := TableSpec{
		Name:       star.DateTable,
		PrimaryKey: "date_key",
		Columns: []ColumnSpec{
			{Name: "date_key", Type: TypeInt},
			{Name: "date", Type: TypeDate},
			{Name: "year", Type: TypeInt},
			{Name: "quarter", Type: TypeInt},
			{Name: "semester", Type: TypeInt},
			{Name: "month", Type: TypeInt},
			{Name: "month_name", Type: TypeText},
			{Name: "day", Type: TypeInt},
			{Name: "day_of_year", Type: TypeInt},
			{Name: "week_of_year", Type: TypeInt},
			{Name: "day_of_week", Type: TypeInt},
			{Name: "day_name", Type: TypeText},
			{Name: "year_month", Type: TypeText},
			{Name: "year_quarter", Type: TypeText},
			{Name: "is_weekend", Type: TypeBool},
		},
	}
	productSpec := TableSpec{
		Name:       star.ProductTable,
		PrimaryKey: "product_key",
		Columns: []ColumnSpec{
			{Name: "product_key", Type: TypeInt},
			{Name: "product_id", Type: TypeText},
			{Name: "category", Type: TypeText},
			{Name: "subcategory", Type: TypeText},
		},
	}
	customerSpec := TableSpec{
		Name:       star.CustomerTable,
		PrimaryKey: "customer_key",
		Columns: []ColumnSpec{
			{Name: "customer_key", Type: TypeInt},
			{Name: "customer_id", Type: TypeText},
			{Name: "region", Type: TypeText},
			{Name: "state", Type: TypeText},
		},
	}
	factSpec := TableSpec{
		Name: star.FactTable,
		Columns: []ColumnSpec{
			{Name: "transaction_id", Type: TypeText},
			{Name: "date_key", Type: TypeInt, References: star.DateTable + "(date_key)"},
			{Name: "product_key", Type: TypeInt, References: star.ProductTable + "(product_key)"},
			{Name: "customer_key", Type: TypeInt, References: star.CustomerTable + "(customer_key)"},
			{Name: "quantity", Type: TypeInt},
			{Name: "unit_price", Type: TypeDouble},
			{Name: "line_total", Type: TypeDouble},
		},
	}

	dateRows := make([][]any, len(m.Dates))
	for i, d := range m.Dates {
		dateRows[i] = []any{
			d.Key, d.Date, d.Year, d.Quarter, d.Semester, d.Month,
			d.MonthName, d.Day, d.DayOfYear, d.WeekOfYear, d.DayOfWeek,
			d.DayName, d.YearMonth, d.YearQuarter, d.IsWeekend,
		}
	}
	productRows := make([][]any, len(m.Products))
	for i, p := range m.Products {
		productRows[i] = []any{p.Key, p.ProductID, p.Category, p.Subcategory}
	}
	customerRows := make([][]any, len(m.Customers))
	for i, c := range m.Customers {
		customerRows[i] = []any{c.Key, c.CustomerID, c.Region, c.State}
	}
	factRows := make([][]any, len(m.Fact))
	for i, f := range m.Fact {
		factRows[i] = []any{
			f.TransactionID, f.DateKey, f.ProductKey, f.CustomerKey,
			f.Quantity, f.UnitPrice, f.LineTotal,
		}
	}

	return []TableLoad{
		{Spec: dateSpec, Columns: dateSpec.ColumnNames(), Rows: dateRows},
		{Spec: productSpec, Columns: productSpec.ColumnNames(), Rows: productRows},
		{Spec: customerSpec, Columns: customerSpec.ColumnNames(), Rows: customerRows},
		{Spec: factSpec, Columns: factSpec.ColumnNames(), Rows: factRows},
	}
}
