package star

import (
	"testing"
	"time"

	"salesmart/internal/sales"
)

func tx(id, date, productID, customerID string) sales.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return sales.Transaction{
		ID: id, Date: d,
		ProductID: productID, Category: "Books", Subcategory: "Fiction",
		CustomerID: customerID, Region: "South", State: "RS",
		Quantity: 1, UnitPrice: 10, LineTotal: 10,
	}
}

func TestBuildFirstSeenKeys(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "PROD-B", "CUST-2"),
		tx("TRX-2", "2024-01-11", "PROD-A", "CUST-1"),
		tx("TRX-3", "2024-01-12", "PROD-B", "CUST-1"),
	}}
	m := Build(ds)

	if len(m.Products) != 2 || len(m.Customers) != 2 {
		t.Fatalf("products=%d customers=%d", len(m.Products), len(m.Customers))
	}
	// First mention wins the lower key regardless of natural-key order.
	if m.Products[0].ProductID != "PROD-B" || m.Products[0].Key != 1 {
		t.Errorf("products[0] = %+v", m.Products[0])
	}
	if m.Products[1].ProductID != "PROD-A" || m.Products[1].Key != 2 {
		t.Errorf("products[1] = %+v", m.Products[1])
	}
	if m.Customers[0].CustomerID != "CUST-2" || m.Customers[0].Key != 1 {
		t.Errorf("customers[0] = %+v", m.Customers[0])
	}

	if m.Fact[2].ProductKey != 1 || m.Fact[2].CustomerKey != 2 {
		t.Errorf("fact[2] = %+v", m.Fact[2])
	}
}

func TestBuildReferentialIntegrity(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "PROD-A", "CUST-1"),
		tx("TRX-2", "2024-01-20", "PROD-B", "CUST-2"),
		tx("TRX-3", "2024-01-15", "PROD-A", "CUST-2"),
	}}
	m := Build(ds)

	dates := make(map[int]bool, len(m.Dates))
	for _, d := range m.Dates {
		dates[d.Key] = true
	}
	products := make(map[int]bool, len(m.Products))
	for _, p := range m.Products {
		products[p.Key] = true
	}
	customers := make(map[int]bool, len(m.Customers))
	for _, c := range m.Customers {
		customers[c.Key] = true
	}

	for i, f := range m.Fact {
		if !dates[f.DateKey] {
			t.Errorf("fact %d: date key %d not in calendar", i, f.DateKey)
		}
		if !products[f.ProductKey] {
			t.Errorf("fact %d: product key %d unresolved", i, f.ProductKey)
		}
		if !customers[f.CustomerKey] {
			t.Errorf("fact %d: customer key %d unresolved", i, f.CustomerKey)
		}
	}

	// Calendar spans min..max inclusive, gaps included.
	if len(m.Dates) != 11 {
		t.Fatalf("calendar days = %d, want 11", len(m.Dates))
	}
}

func TestBuildDegenerate(t *testing.T) {
	m := Build(&sales.Dataset{Degenerate: true})
	if !m.Degenerate {
		t.Fatal("Degenerate not set")
	}
	if len(m.Fact) != 0 || len(m.Dates) != 0 || len(m.Products) != 0 || len(m.Customers) != 0 {
		t.Fatalf("model not empty: %+v", m)
	}
}

func TestDateKey(t *testing.T) {
	d := time.Date(2024, 3, 7, 18, 30, 0, 0, time.UTC)
	if got := DateKey(d); got != 20240307 {
		t.Fatalf("DateKey = %d, want 20240307", got)
	}
}

func TestCalendarFields(t *testing.T) {
	// 2024-01-06 is a Saturday in ISO week 1.
	day := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	rows := Calendar(day, day)
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.Key != 20240106 || r.Year != 2024 || r.Quarter != 1 || r.Semester != 1 {
		t.Errorf("row = %+v", r)
	}
	if r.Month != 1 || r.MonthName != "January" || r.Day != 6 || r.DayOfYear != 6 {
		t.Errorf("row = %+v", r)
	}
	if r.WeekOfYear != 1 || r.DayOfWeek != 6 || r.DayName != "Saturday" || !r.IsWeekend {
		t.Errorf("row = %+v", r)
	}
	if r.YearMonth != "2024-01" || r.YearQuarter != "2024-Q1" {
		t.Errorf("row = %+v", r)
	}
}

func TestCalendarInclusiveSpan(t *testing.T) {
	min := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	max := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := Calendar(min, max)
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5 (leap day included)", len(rows))
	}
	if rows[2].Key != 20240229 {
		t.Fatalf("rows[2].Key = %d, want 20240229", rows[2].Key)
	}
}

func TestCalendarCap(t *testing.T) {
	min := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := Calendar(min, max)
	if len(rows) != maxCalendarDays {
		t.Fatalf("rows = %d, want cap %d", len(rows), maxCalendarDays)
	}
}

func TestCalendarInverted(t *testing.T) {
	min := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	max := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if rows := Calendar(min, max); rows != nil {
		t.Fatalf("rows = %v, want nil", rows)
	}
}

func TestSchemaLookups(t *testing.T) {
	m := &Model{}
	s := m.Schema()

	if !s.HasTable(FactTable) || !s.HasTable(DateTable) || !s.HasTable(ProductTable) || !s.HasTable(CustomerTable) {
		t.Fatal("schema missing a model table")
	}
	if s.HasTable("dim_store") {
		t.Fatal("HasTable matched an absent table")
	}
	if !s.HasColumn(FactTable, "line_total") || !s.HasColumn(DateTable, "year_quarter") {
		t.Fatal("schema missing a column")
	}
	if s.HasColumn(FactTable, "year_quarter") {
		t.Fatal("HasColumn matched a column of the wrong table")
	}

	rels := m.Relationships()
	if len(rels) != 3 {
		t.Fatalf("relationships = %+v", rels)
	}
	for _, r := range rels {
		if r.FromTable != FactTable {
			t.Errorf("relationship from %q, want %q", r.FromTable, FactTable)
		}
		if !s.HasColumn(r.ToTable, r.ToColumn) {
			t.Errorf("relationship target %s.%s not in schema", r.ToTable, r.ToColumn)
		}
	}
}
