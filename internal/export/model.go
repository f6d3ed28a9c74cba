package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"salesmart/internal/star"
)

// Star schema artifact file names.
const (
	FactFile     = star.FactTable + ".csv"
	DateFile     = star.DateTable + ".csv"
	ProductFile  = star.ProductTable + ".csv"
	CustomerFile = star.CustomerTable + ".csv"
)

// WriteModelCSV writes the four star schema tables into dir. Headers match
// Model.Schema() exactly, so validated measure bindings resolve against
// the files too. Returns per-file row counts keyed by file name.
func WriteModelCSV(dir string, m *star.Model) (map[string]int, error) {
	counts := make(map[string]int, 4)

	factRows := make([][]string, len(m.Fact))
	for i, f := range m.Fact {
		factRows[i] = []string{
			f.TransactionID,
			strconv.Itoa(f.DateKey),
			strconv.Itoa(f.ProductKey),
			strconv.Itoa(f.CustomerKey),
			strconv.Itoa(f.Quantity),
			money(f.UnitPrice),
			money(f.LineTotal),
		}
	}

	dateRows := make([][]string, len(m.Dates))
	for i, d := range m.Dates {
		dateRows[i] = []string{
			strconv.Itoa(d.Key),
			d.Date.Format("2006-01-02"),
			strconv.Itoa(d.Year),
			strconv.Itoa(d.Quarter),
			strconv.Itoa(d.Semester),
			strconv.Itoa(d.Month),
			d.MonthName,
			strconv.Itoa(d.Day),
			strconv.Itoa(d.DayOfYear),
			strconv.Itoa(d.WeekOfYear),
			strconv.Itoa(d.DayOfWeek),
			d.DayName,
			d.YearMonth,
			d.YearQuarter,
			strconv.FormatBool(d.IsWeekend),
		}
	}

	productRows := make([][]string, len(m.Products))
	for i, p := range m.Products {
		productRows[i] = []string{
			strconv.Itoa(p.Key), p.ProductID, p.Category, p.Subcategory,
		}
	}

	customerRows := make([][]string, len(m.Customers))
	for i, c := range m.Customers {
		customerRows[i] = []string{
			strconv.Itoa(c.Key), c.CustomerID, c.Region, c.State,
		}
	}

	schema := m.Schema()
	files := []struct {
		name  string
		table string
		rows  [][]string
	}{
		{FactFile, star.FactTable, factRows},
		{DateFile, star.DateTable, dateRows},
		{ProductFile, star.ProductTable, productRows},
		{CustomerFile, star.CustomerTable, customerRows},
	}

	for _, fl := range files {
		header := columnsOf(schema, fl.table)
		if err := writeCSV(filepath.Join(dir, fl.name), header, fl.rows); err != nil {
			return nil, err
		}
		counts[fl.name] = len(fl.rows)
	}
	return counts, nil
}

func columnsOf(s star.Schema, table string) []string {
	for _, t := range s.Tables {
		if t.Name == table {
			return t.Columns
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
