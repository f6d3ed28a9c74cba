// Package aggregate computes the analysis tables: grouped revenue metrics
// along the period, category, subcategory, region and weekday dimensions.
//
// Every function here is a pure transformation of an immutable dataset.
// Output ordering is fully deterministic, so re-running any aggregation on
// the same dataset yields an identical table.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"salesmart/internal/sales"
)

// Granularity is the time bucket size for period aggregation.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// ParseGranularity validates a granularity string from config or CLI.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Day, Week, Month, Quarter, Year:
		return Granularity(s), nil
	}
	return "", &sales.ParameterError{
		Param: "granularity", Value: s,
		Reason: "must be one of day, week, month, quarter, year",
	}
}

// Group is one row of an analysis table.
//
// GrowthRate is nil outside period tables, and nil inside them when the
// group has no predecessor or the predecessor's revenue is zero. Undefined
// growth is represented, never substituted with zero.
type Group struct {
	Key   string // sortable grouping key
	Label string // display label when Key alone is unreadable (weekday)

	TotalRevenue     float64
	TransactionCount int
	AverageTicket    float64
	Share            float64 // percent of dataset revenue
	GrowthRate       *float64
	Rank             int
}

// Table is one analysis table. Groups carry unique keys; ordering is part
// of the contract (see the By* constructors).
type Table struct {
	Name      string // period_month, category, region, ...
	KeyColumn string

	HasShare  bool
	HasGrowth bool
	HasRank   bool

	Groups []Group
}

// PeriodKey buckets a date into the granularity's key format. Formats are
// chosen so lexicographic order equals chronological order:
// 2024-01-05, 2024-W02, 2024-01, 2024-Q1, 2024.
func PeriodKey(t time.Time, g Granularity) string {
	d := sales.DateOnly(t)
	switch g {
	case Day:
		return d.Format("2006-01-02")
	case Week:
		y, w := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case Month:
		return d.Format("2006-01")
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", d.Year(), (int(d.Month())-1)/3+1)
	default:
		return d.Format("2006")
	}
}

type bucket struct {
	revenue float64
	count   int
	label   string
}

func accumulate(ds *sales.Dataset, keyOf func(*sales.Transaction) (key, label string)) map[string]*bucket {
	buckets := make(map[string]*bucket)
	for i := range ds.Records {
		tx := &ds.Records[i]
		key, label := keyOf(tx)
		b := buckets[key]
		if b == nil {
			b = &bucket{label: label}
			buckets[key] = b
		}
		b.revenue += tx.LineTotal
		b.count++
	}
	return buckets
}

// avgTicket guards the divide even though a zero-count group cannot occur
// (groups exist only for present data).
func avgTicket(revenue float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return revenue / float64(count)
}

// ByPeriod aggregates revenue into granularity buckets, ascending by
// period key, with growth rate versus the previous period in the output
// ordering.
//
// Errors: *sales.ParameterError for an unsupported granularity.
func ByPeriod(ds *sales.Dataset, g Granularity) (*Table, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	buckets := accumulate(ds, func(tx *sales.Transaction) (string, string) {
		return PeriodKey(tx.Date, g), ""
	})

	keys := sortedKeys(buckets)
	t := &Table{
		Name:      "period_" + string(g),
		KeyColumn: "period",
		HasGrowth: true,
		Groups:    make([]Group, 0, len(keys)),
	}
	var prev *bucket
	for _, k := range keys {
		b := buckets[k]
		grp := Group{
			Key:              k,
			TotalRevenue:     b.revenue,
			TransactionCount: b.count,
			AverageTicket:    avgTicket(b.revenue, b.count),
		}
		if prev != nil && prev.revenue != 0 {
			rate := (b.revenue - prev.revenue) / prev.revenue
			grp.GrowthRate = &rate
		}
		t.Groups = append(t.Groups, grp)
		prev = b
	}
	return t, nil
}

// ByCategory aggregates per product category with revenue share and dense
// rank. Rank orders by revenue descending, ties broken by category name
// ascending; the table itself is sorted by rank ascending.
func ByCategory(ds *sales.Dataset) *Table {
	return rankedTable(ds, "category", "category", func(tx *sales.Transaction) (string, string) {
		return tx.Category, ""
	})
}

// BySubcategory aggregates per (category, subcategory) pair, ranked the
// same way the category table is.
func BySubcategory(ds *sales.Dataset) *Table {
	return rankedTable(ds, "subcategory", "subcategory", func(tx *sales.Transaction) (string, string) {
		return tx.Category + " / " + tx.Subcategory, ""
	})
}

// ByRegion aggregates per customer region with revenue share, ascending
// by region name.
func ByRegion(ds *sales.Dataset) *Table {
	buckets := accumulate(ds, func(tx *sales.Transaction) (string, string) {
		return tx.Region, ""
	})
	total := ds.TotalRevenue()

	t := &Table{Name: "region", KeyColumn: "region", HasShare: true}
	for _, k := range sortedKeys(buckets) {
		b := buckets[k]
		t.Groups = append(t.Groups, Group{
			Key:              k,
			TotalRevenue:     b.revenue,
			TransactionCount: b.count,
			AverageTicket:    avgTicket(b.revenue, b.count),
			Share:            share(b.revenue, total),
		})
	}
	return t
}

// ByWeekday aggregates per day of week, Monday first.
func ByWeekday(ds *sales.Dataset) *Table {
	buckets := accumulate(ds, func(tx *sales.Transaction) (string, string) {
		n := isoWeekday(tx.Date)
		return fmt.Sprintf("%d", n), tx.Date.Weekday().String()
	})

	t := &Table{Name: "weekday", KeyColumn: "weekday"}
	for _, k := range sortedKeys(buckets) {
		b := buckets[k]
		t.Groups = append(t.Groups, Group{
			Key:              k,
			Label:            b.label,
			TotalRevenue:     b.revenue,
			TransactionCount: b.count,
			AverageTicket:    avgTicket(b.revenue, b.count),
		})
	}
	return t
}

func rankedTable(ds *sales.Dataset, name, keyColumn string, keyOf func(*sales.Transaction) (string, string)) *Table {
	buckets := accumulate(ds, keyOf)
	total := ds.TotalRevenue()

	t := &Table{Name: name, KeyColumn: keyColumn, HasShare: true, HasRank: true}
	for _, k := range sortedKeys(buckets) {
		b := buckets[k]
		t.Groups = append(t.Groups, Group{
			Key:              k,
			TotalRevenue:     b.revenue,
			TransactionCount: b.count,
			AverageTicket:    avgTicket(b.revenue, b.count),
			Share:            share(b.revenue, total),
		})
	}

	// Revenue descending, then key ascending; the sort above already left
	// equal-revenue groups in key order, so this sort only needs revenue.
	sort.SliceStable(t.Groups, func(i, j int) bool {
		return t.Groups[i].TotalRevenue > t.Groups[j].TotalRevenue
	})

	// Dense rank: ties share a rank, the next distinct revenue gets the
	// next integer with no gap.
	rank := 0
	for i := range t.Groups {
		if i == 0 || t.Groups[i].TotalRevenue != t.Groups[i-1].TotalRevenue {
			rank++
		}
		t.Groups[i].Rank = rank
	}
	return t
}

func share(revenue, total float64) float64 {
	if total == 0 {
		return 0
	}
	return revenue / total * 100
}

// isoWeekday maps Monday to 1 through Sunday to 7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func sortedKeys(m map[string]*bucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
