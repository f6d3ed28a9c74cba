// Package export writes the run's artifacts: per-table CSVs, the star
// schema files, an Excel workbook, the DAX measure script, the visual
// theme, model metadata and a run manifest.
//
// File names are fixed so repeated runs into the same directory are
// reproducible and downstream tooling can hardcode paths.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"salesmart/internal/aggregate"
)

// WriteTableCSV writes one analysis table. Column layout follows the
// table's flags: the key column, the three base metrics, then share,
// growth rate and rank when the table carries them. Undefined growth is
// an empty cell, never 0.
func WriteTableCSV(path string, t *aggregate.Table) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{t.KeyColumn}
	hasLabel := tableHasLabel(t)
	if hasLabel {
		header = append(header, t.KeyColumn+"_name")
	}
	header = append(header, "total_revenue", "transaction_count", "average_ticket")
	if t.HasShare {
		header = append(header, "revenue_share_pct")
	}
	if t.HasGrowth {
		header = append(header, "growth_rate")
	}
	if t.HasRank {
		header = append(header, "rank")
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	for _, g := range t.Groups {
		rec := []string{g.Key}
		if hasLabel {
			rec = append(rec, g.Label)
		}
		rec = append(rec,
			money(g.TotalRevenue),
			strconv.Itoa(g.TransactionCount),
			money(g.AverageTicket),
		)
		if t.HasShare {
			rec = append(rec, money(g.Share))
		}
		if t.HasGrowth {
			if g.GrowthRate == nil {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(*g.GrowthRate, 'f', 4, 64))
			}
		}
		if t.HasRank {
			rec = append(rec, strconv.Itoa(g.Rank))
		}
		if err := w.Write(rec); err != nil {
			return 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return len(t.Groups), nil
}

func tableHasLabel(t *aggregate.Table) bool {
	for _, g := range t.Groups {
		if g.Label != "" {
			return true
		}
	}
	return false
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
