// Package ingest parses delimited input into the cleaned dataset the
// analytic stages consume. Cleaning happens at exactly one boundary:
// every record that leaves this package satisfies the sales.Transaction
// invariants, and everything that does not lands in the rejection log
// with a single reason code.
package ingest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"salesmart/internal/config"
	"salesmart/internal/sales"
)

// dateLayouts tried in order when coercing the date column.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// Positional indexes into canonicalColumns. Keep in sync with the slice
// in stream.go.
const (
	colTransactionID = iota
	colDate
	colProductID
	colCategory
	colSubcategory
	colCustomerID
	colRegion
	colQuantity
	colUnitPrice
	colState
	colPaymentMethod
	colOrderStatus
	colShippingCost
)

// Clean reads delimited input from r and produces the cleaned dataset for
// this run.
//
// When to use: once per pipeline run, at the ingestion boundary. The
// returned dataset is immutable by convention; no later stage mutates it.
//
// Edge cases:
//   - A header that cannot satisfy the required columns aborts the whole
//     run with a *SchemaError naming every missing column.
//   - A row failing validation is recorded in Dataset.Rejected with one
//     reason code (first failed check wins) and processing continues.
//   - Zero accepted rows is not an error: the dataset comes back with
//     Degenerate set and empty Records.
//
// Errors: *SchemaError for structural failures, ctx.Err() on cancellation.
func Clean(ctx context.Context, r io.Reader, opt config.Options) (*sales.Dataset, error) {
	rows := make(chan *Row, 64)
	errCh := make(chan error, 1)

	ds := &sales.Dataset{}
	var structural []sales.RejectedRow
	onErr := func(line int, err error) {
		structural = append(structural, sales.RejectedRow{
			Line:   line,
			Reason: sales.ReasonBadRecord,
			Detail: err.Error(),
		})
	}

	go func() {
		defer close(rows)
		errCh <- streamRows(ctx, r, opt, rows, onErr)
	}()

	for row := range rows {
		tx, reason, detail := coerce(row)
		if reason != "" {
			ds.Rejected = append(ds.Rejected, sales.RejectedRow{
				Line:   row.Line,
				Raw:    rawCells(row),
				Reason: reason,
				Detail: detail,
			})
		} else {
			ds.Records = append(ds.Records, tx)
		}
		row.Free()
	}

	if err := <-errCh; err != nil {
		return nil, err
	}
	if len(structural) > 0 {
		ds.Rejected = append(ds.Rejected, structural...)
		sort.SliceStable(ds.Rejected, func(i, j int) bool {
			return ds.Rejected[i].Line < ds.Rejected[j].Line
		})
	}
	if len(ds.Records) == 0 {
		ds.Degenerate = true
	}
	return ds, nil
}

// coerce validates one aligned row and builds the transaction. The reason
// checks run in a fixed order (date, quantity, price, identifiers) so a
// row failing several lands on the same reason every run.
func coerce(row *Row) (tx sales.Transaction, reason, detail string) {
	date, ok := parseDate(cell(row, colDate))
	if !ok {
		return tx, sales.ReasonBadDate, fmt.Sprintf("unparseable date %q", cell(row, colDate))
	}

	qty, err := strconv.Atoi(strings.TrimSuffix(cell(row, colQuantity), ".0"))
	if err != nil {
		return tx, sales.ReasonBadRecord, fmt.Sprintf("malformed quantity %q", cell(row, colQuantity))
	}
	if qty <= 0 {
		return tx, sales.ReasonNonPositiveQuantity, fmt.Sprintf("quantity %q", cell(row, colQuantity))
	}

	price, err := strconv.ParseFloat(normalizeDecimal(cell(row, colUnitPrice)), 64)
	if err != nil {
		return tx, sales.ReasonBadRecord, fmt.Sprintf("malformed unit price %q", cell(row, colUnitPrice))
	}
	if price < 0 {
		return tx, sales.ReasonNegativePrice, fmt.Sprintf("unit price %q", cell(row, colUnitPrice))
	}

	id := cell(row, colTransactionID)
	productID := cell(row, colProductID)
	customerID := cell(row, colCustomerID)
	if id == "" || productID == "" || customerID == "" {
		return tx, sales.ReasonMissingID, "empty transaction, product or customer identifier"
	}

	shipping, _ := strconv.ParseFloat(normalizeDecimal(cell(row, colShippingCost)), 64)

	tx = sales.Transaction{
		ID:            id,
		Date:          date,
		ProductID:     productID,
		Category:      cell(row, colCategory),
		Subcategory:   cell(row, colSubcategory),
		CustomerID:    customerID,
		Region:        cell(row, colRegion),
		State:         cell(row, colState),
		PaymentMethod: cell(row, colPaymentMethod),
		OrderStatus:   cell(row, colOrderStatus),
		Quantity:      qty,
		UnitPrice:     price,
		ShippingCost:  shipping,
		// Recomputed here, never read from input.
		LineTotal: float64(qty) * price,
	}
	return tx, "", ""
}

func cell(row *Row, ix int) string {
	if v, ok := row.V[ix].(string); ok {
		return v
	}
	return ""
}

func rawCells(row *Row) []string {
	out := make([]string, len(row.V))
	for i := range row.V {
		if s, ok := row.V[i].(string); ok {
			out[i] = s
		}
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalizeDecimal accepts a comma decimal separator, common in exports
// from pt-BR locales.
func normalizeDecimal(s string) string {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strings.ReplaceAll(s, ",", ".")
	}
	return s
}
