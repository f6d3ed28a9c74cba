package aggregate

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"salesmart/internal/sales"
)

func tx(id, date, category, sub, region string, total float64) sales.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return sales.Transaction{
		ID: id, Date: d,
		Category: category, Subcategory: sub, Region: region,
		Quantity: 1, UnitPrice: total, LineTotal: total,
	}
}

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"day", "week", "month", "quarter", "year"} {
		if _, err := ParseGranularity(s); err != nil {
			t.Errorf("ParseGranularity(%q) = %v", s, err)
		}
	}
	_, err := ParseGranularity("fortnight")
	var perr *sales.ParameterError
	if !errors.As(err, &perr) || perr.Param != "granularity" {
		t.Fatalf("got %v, want granularity ParameterError", err)
	}
}

func TestPeriodKeyFormats(t *testing.T) {
	d := time.Date(2024, 1, 5, 13, 45, 0, 0, time.UTC)
	cases := []struct {
		g    Granularity
		want string
	}{
		{Day, "2024-01-05"},
		{Week, "2024-W01"},
		{Month, "2024-01"},
		{Quarter, "2024-Q1"},
		{Year, "2024"},
	}
	for _, c := range cases {
		if got := PeriodKey(d, c.g); got != c.want {
			t.Errorf("PeriodKey(%v) = %q, want %q", c.g, got, c.want)
		}
	}

	// ISO week years differ from calendar years at the boundary.
	nye := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	if got := PeriodKey(nye, Week); got != "2025-W01" {
		t.Errorf("PeriodKey(2024-12-30, week) = %q, want 2025-W01", got)
	}
}

func TestByPeriodGrowth(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "A", "X", "South", 20.00),
		tx("TRX-2", "2024-02-05", "A", "X", "South", 30.00),
		tx("TRX-3", "2024-02-20", "B", "Y", "North", 20.00),
	}}

	tbl, err := ByPeriod(ds, Month)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Groups) != 2 {
		t.Fatalf("groups = %+v", tbl.Groups)
	}

	jan, feb := tbl.Groups[0], tbl.Groups[1]
	if jan.Key != "2024-01" || feb.Key != "2024-02" {
		t.Fatalf("keys = %q, %q", jan.Key, feb.Key)
	}
	if jan.GrowthRate != nil {
		t.Errorf("first period growth = %v, want nil", *jan.GrowthRate)
	}
	if feb.TotalRevenue != 50 || feb.TransactionCount != 2 || feb.AverageTicket != 25 {
		t.Errorf("feb = %+v", feb)
	}
	if feb.GrowthRate == nil || math.Abs(*feb.GrowthRate-1.5) > 1e-12 {
		t.Errorf("feb growth = %v, want 1.5", feb.GrowthRate)
	}
}

func TestByPeriodGrowthNilAfterZeroRevenue(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "A", "X", "South", 0),
		tx("TRX-2", "2024-02-05", "A", "X", "South", 30.00),
	}}
	tbl, err := ByPeriod(ds, Month)
	if err != nil {
		t.Fatal(err)
	}
	if g := tbl.Groups[1].GrowthRate; g != nil {
		t.Fatalf("growth after zero-revenue period = %v, want nil", *g)
	}
}

func TestByPeriodBadGranularity(t *testing.T) {
	if _, err := ByPeriod(&sales.Dataset{}, "hour"); err == nil {
		t.Fatal("expected error")
	}
}

func TestByCategoryRank(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-01", "A", "X", "South", 20.00),
		tx("TRX-2", "2024-01-02", "B", "Y", "South", 50.00),
		tx("TRX-3", "2024-01-03", "C", "Z", "South", 20.00),
	}}

	tbl := ByCategory(ds)
	if len(tbl.Groups) != 3 {
		t.Fatalf("groups = %+v", tbl.Groups)
	}

	// B leads; A and C tie on revenue and share rank 2, name order breaks
	// the tie in the listing.
	want := []struct {
		key  string
		rank int
	}{{"B", 1}, {"A", 2}, {"C", 2}}
	for i, w := range want {
		g := tbl.Groups[i]
		if g.Key != w.key || g.Rank != w.rank {
			t.Errorf("group %d = {%s rank=%d}, want {%s rank=%d}", i, g.Key, g.Rank, w.key, w.rank)
		}
	}

	var shareSum float64
	for _, g := range tbl.Groups {
		shareSum += g.Share
	}
	if math.Abs(shareSum-100) > 1e-9 {
		t.Errorf("shares sum to %v, want 100", shareSum)
	}
}

func TestByCategoryDenseRankNoGaps(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-01", "A", "X", "South", 50.00),
		tx("TRX-2", "2024-01-02", "B", "Y", "South", 50.00),
		tx("TRX-3", "2024-01-03", "C", "Z", "South", 10.00),
	}}
	tbl := ByCategory(ds)
	ranks := []int{tbl.Groups[0].Rank, tbl.Groups[1].Rank, tbl.Groups[2].Rank}
	if ranks[0] != 1 || ranks[1] != 1 || ranks[2] != 2 {
		t.Fatalf("ranks = %v, want [1 1 2]", ranks)
	}
}

func TestBySubcategoryKeys(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-01", "Books", "Fiction", "South", 10.00),
		tx("TRX-2", "2024-01-02", "Books", "Comics", "South", 20.00),
	}}
	tbl := BySubcategory(ds)
	if tbl.Groups[0].Key != "Books / Comics" || tbl.Groups[1].Key != "Books / Fiction" {
		t.Fatalf("groups = %+v", tbl.Groups)
	}
}

func TestByRegionOrderAndShare(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-01", "A", "X", "South", 75.00),
		tx("TRX-2", "2024-01-02", "A", "X", "North", 25.00),
	}}
	tbl := ByRegion(ds)
	if tbl.Groups[0].Key != "North" || tbl.Groups[1].Key != "South" {
		t.Fatalf("region order = %+v", tbl.Groups)
	}
	if tbl.Groups[0].Share != 25 || tbl.Groups[1].Share != 75 {
		t.Fatalf("shares = %v, %v", tbl.Groups[0].Share, tbl.Groups[1].Share)
	}
	if tbl.Groups[0].Rank != 0 {
		t.Fatal("region table should not carry ranks")
	}
}

func TestByWeekday(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-07 a Sunday.
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-07", "A", "X", "South", 10.00),
		tx("TRX-2", "2024-01-01", "A", "X", "South", 10.00),
	}}
	tbl := ByWeekday(ds)
	if len(tbl.Groups) != 2 {
		t.Fatalf("groups = %+v", tbl.Groups)
	}
	if tbl.Groups[0].Key != "1" || tbl.Groups[0].Label != "Monday" {
		t.Errorf("first group = %+v, want Monday", tbl.Groups[0])
	}
	if tbl.Groups[1].Key != "7" || tbl.Groups[1].Label != "Sunday" {
		t.Errorf("second group = %+v, want Sunday", tbl.Groups[1])
	}
}

func TestAggregationConservation(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "A", "X", "South", 12.34),
		tx("TRX-2", "2024-02-05", "B", "Y", "North", 56.78),
		tx("TRX-3", "2024-03-20", "C", "Z", "South", 90.12),
	}}
	total := ds.TotalRevenue()

	period, _ := ByPeriod(ds, Month)
	for _, tbl := range []*Table{period, ByCategory(ds), BySubcategory(ds), ByRegion(ds), ByWeekday(ds)} {
		var sum float64
		var count int
		for _, g := range tbl.Groups {
			sum += g.TotalRevenue
			count += g.TransactionCount
		}
		if math.Abs(sum-total) > 1e-9 {
			t.Errorf("%s: revenue %v, want %v", tbl.Name, sum, total)
		}
		if count != len(ds.Records) {
			t.Errorf("%s: count %d, want %d", tbl.Name, count, len(ds.Records))
		}
	}
}

func TestAggregationIdempotent(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Transaction{
		tx("TRX-1", "2024-01-10", "A", "X", "South", 12.34),
		tx("TRX-2", "2024-02-05", "B", "Y", "North", 56.78),
	}}
	a, _ := ByPeriod(ds, Month)
	b, _ := ByPeriod(ds, Month)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("ByPeriod not deterministic")
	}
	if !reflect.DeepEqual(ByCategory(ds), ByCategory(ds)) {
		t.Fatal("ByCategory not deterministic")
	}
}

func TestEmptyDatasetTables(t *testing.T) {
	ds := &sales.Dataset{Degenerate: true}
	tbl, err := ByPeriod(ds, Month)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Groups) != 0 {
		t.Fatalf("groups = %+v", tbl.Groups)
	}
	if got := ByRegion(ds); len(got.Groups) != 0 {
		t.Fatalf("region groups = %+v", got.Groups)
	}
}
