// Package star derives the dimensional model: one fact table plus date,
// product and customer dimensions, wired with integer surrogate keys so
// downstream joins never touch natural keys.
package star

import (
	"fmt"
	"time"

	"salesmart/internal/sales"
)

// maxCalendarDays caps the generated calendar span. A dataset whose dates
// cover more than ten years almost certainly contains a mis-parsed date;
// the calendar stops at the cap rather than exploding.
const maxCalendarDays = 3650

// DateRow is one calendar day. Key is the yyyymmdd integer form of the
// date, which keeps fact joins integer-based while staying derivable for
// dates the cleaned dataset never touched.
type DateRow struct {
	Key         int
	Date        time.Time
	Year        int
	Quarter     int
	Semester    int
	Month       int
	MonthName   string
	Day         int
	DayOfYear   int
	WeekOfYear  int // ISO week
	DayOfWeek   int // Monday=1 .. Sunday=7
	DayName     string
	YearMonth   string // 2024-03
	YearQuarter string // 2024-Q1
	IsWeekend   bool
}

// ProductRow is one distinct product. Category and subcategory come from
// the first record that mentioned the product.
type ProductRow struct {
	Key         int
	ProductID   string
	Category    string
	Subcategory string
}

// CustomerRow is one distinct customer with its region.
type CustomerRow struct {
	Key        int
	CustomerID string
	Region     string
	State      string
}

// FactRow is one transaction with dimension keys resolved.
type FactRow struct {
	TransactionID string
	DateKey       int
	ProductKey    int
	CustomerKey   int
	Quantity      int
	UnitPrice     float64
	LineTotal     float64
}

// Model is the star schema for one run. Immutable once built; surrogate
// keys are stable for the lifetime of the model.
type Model struct {
	Fact      []FactRow
	Dates     []DateRow
	Products  []ProductRow
	Customers []CustomerRow

	// Degenerate marks a model built from zero accepted rows: empty fact,
	// zero-row calendar. Valid output, not an error.
	Degenerate bool
}

// Build derives the model from a cleaned dataset in a single traversal.
//
// Key assignment: product and customer keys are handed out in first-seen
// order starting at 1, so a deterministic dataset ordering yields a
// deterministic model. Date keys are the yyyymmdd form of the calendar
// day.
//
// Edge cases: an empty dataset yields an empty fact table and a zero-row
// calendar, with Degenerate set.
func Build(ds *sales.Dataset) *Model {
	m := &Model{}
	if len(ds.Records) == 0 {
		m.Degenerate = true
		return m
	}

	productKey := make(map[string]int)
	customerKey := make(map[string]int)

	for i := range ds.Records {
		tx := &ds.Records[i]

		pk, ok := productKey[tx.ProductID]
		if !ok {
			pk = len(m.Products) + 1
			productKey[tx.ProductID] = pk
			m.Products = append(m.Products, ProductRow{
				Key:         pk,
				ProductID:   tx.ProductID,
				Category:    tx.Category,
				Subcategory: tx.Subcategory,
			})
		}

		ck, ok := customerKey[tx.CustomerID]
		if !ok {
			ck = len(m.Customers) + 1
			customerKey[tx.CustomerID] = ck
			m.Customers = append(m.Customers, CustomerRow{
				Key:        ck,
				CustomerID: tx.CustomerID,
				Region:     tx.Region,
				State:      tx.State,
			})
		}

		m.Fact = append(m.Fact, FactRow{
			TransactionID: tx.ID,
			DateKey:       DateKey(tx.Date),
			ProductKey:    pk,
			CustomerKey:   ck,
			Quantity:      tx.Quantity,
			UnitPrice:     tx.UnitPrice,
			LineTotal:     tx.LineTotal,
		})
	}

	min, max, _ := ds.DateRange()
	m.Dates = Calendar(min, max)
	return m
}

// DateKey converts a timestamp into the yyyymmdd integer key used by the
// fact table and the calendar dimension.
func DateKey(t time.Time) int {
	d := sales.DateOnly(t)
	return d.Year()*10000 + int(d.Month())*100 + d.Day()
}

// Calendar generates one row per calendar day from min to max inclusive,
// independent of which days actually saw transactions. The span is capped
// at maxCalendarDays.
func Calendar(min, max time.Time) []DateRow {
	min, max = sales.DateOnly(min), sales.DateOnly(max)
	if max.Before(min) {
		return nil
	}
	if int(max.Sub(min).Hours()/24) >= maxCalendarDays {
		max = min.AddDate(0, 0, maxCalendarDays-1)
	}

	var out []DateRow
	for d := min; !d.After(max); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		quarter := (int(d.Month())-1)/3 + 1
		dow := isoWeekday(d)
		out = append(out, DateRow{
			Key:         DateKey(d),
			Date:        d,
			Year:        d.Year(),
			Quarter:     quarter,
			Semester:    (int(d.Month())-1)/6 + 1,
			Month:       int(d.Month()),
			MonthName:   d.Month().String(),
			Day:         d.Day(),
			DayOfYear:   d.YearDay(),
			WeekOfYear:  week,
			DayOfWeek:   dow,
			DayName:     d.Weekday().String(),
			YearMonth:   d.Format("2006-01"),
			YearQuarter: fmt.Sprintf("%d-Q%d", d.Year(), quarter),
			IsWeekend:   dow >= 6,
		})
	}
	return out
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
