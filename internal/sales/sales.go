// Package sales defines the core transaction record, the cleaned dataset,
// and the rejection log shared by every pipeline stage.
//
// A Dataset is built exactly once per run (from a file or from the
// generator), is immutable afterwards, and is the only input the
// aggregation and model-building stages accept. Rejected rows never reach
// those stages.
package sales

import (
	"errors"
	"time"
)

// Rejection reason codes. Exactly one reason is recorded per rejected row;
// the first failed check wins. ReasonBadRecord covers both structurally
// broken rows and cells that do not parse as their column's type; the
// remaining codes name value-range and presence failures on rows that
// parsed fine.
const (
	ReasonBadRecord           = "bad_record"
	ReasonBadDate             = "bad_date"
	ReasonNonPositiveQuantity = "non_positive_quantity"
	ReasonNegativePrice       = "negative_price"
	ReasonMissingID           = "missing_id"
)

// ErrDegenerateInput reports a run whose cleaning stage accepted zero rows.
// It is a flag, not a failure: downstream stages still run and produce
// empty (but well-formed) outputs.
var ErrDegenerateInput = errors.New("sales: no valid rows after cleaning")

// Transaction is one cleaned, validated sale line.
//
// Invariants (enforced at the cleaning boundary, assumed everywhere else):
//   - ID, ProductID and CustomerID are non-empty
//   - Date parses to a calendar date
//   - Quantity > 0, UnitPrice >= 0
//   - LineTotal == float64(Quantity) * UnitPrice, always recomputed and
//     never taken from input
//
// State, PaymentMethod, OrderStatus and ShippingCost are optional columns;
// they are zero-valued when the input does not carry them.
type Transaction struct {
	ID          string
	Date        time.Time
	ProductID   string
	Category    string
	Subcategory string
	CustomerID  string
	Region      string

	State         string
	PaymentMethod string
	OrderStatus   string

	Quantity     int
	UnitPrice    float64
	ShippingCost float64
	LineTotal    float64
}

// RejectedRow is one dropped input row plus the single reason it was
// dropped. Raw holds the original cells verbatim so the rejection log can
// be written back out for inspection.
type RejectedRow struct {
	Line   int
	Raw    []string
	Reason string
	Detail string
}

// Dataset is the cleaned record set for one run.
type Dataset struct {
	Records  []Transaction
	Rejected []RejectedRow

	// Degenerate is set when zero rows were accepted. The dataset is still
	// valid; callers that need an error value use Err.
	Degenerate bool
}

// Err returns ErrDegenerateInput when the dataset accepted zero rows and
// nil otherwise, so callers can branch with errors.Is instead of reading
// the flag.
func (d *Dataset) Err() error {
	if d.Degenerate {
		return ErrDegenerateInput
	}
	return nil
}

// TotalRevenue sums LineTotal over all accepted records.
func (d *Dataset) TotalRevenue() float64 {
	var total float64
	for i := range d.Records {
		total += d.Records[i].LineTotal
	}
	return total
}

// DateRange returns the inclusive [min, max] transaction dates, truncated
// to midnight UTC. ok is false for an empty dataset.
func (d *Dataset) DateRange() (min, max time.Time, ok bool) {
	if len(d.Records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min = DateOnly(d.Records[0].Date)
	max = min
	for i := 1; i < len(d.Records); i++ {
		day := DateOnly(d.Records[i].Date)
		if day.Before(min) {
			min = day
		}
		if day.After(max) {
			max = day
		}
	}
	return min, max, true
}

// DateOnly drops the time-of-day portion, keeping year/month/day in UTC.
// Period keys and calendar rows are always derived from this form so that
// two timestamps on the same day land in the same bucket.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
