// Package generator produces synthetic e-commerce transactions for test
// runs and demos.
//
// Output is deterministic: the same Config (including Seed) yields
// bit-identical records, draw for draw. All randomness flows through a
// single rand.Rand and the draw order per record is fixed, so adding a
// field means appending a draw, never reordering existing ones.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"salesmart/internal/sales"
)

// Config controls one generation run.
type Config struct {
	// Count is the number of records to produce. Must be positive; the
	// config layer applies the default before calling Generate.
	Count int

	// Seed for the random source. Zero is a valid, fixed seed.
	Seed int64

	// Start and End bound purchase dates, inclusive. Zero values default
	// to the trailing 365 days ending today. An inverted range is swapped,
	// not rejected.
	Start time.Time
	End   time.Time
}

// product is one fixed-catalog entry. The catalog is deterministic so a
// product ID always maps to the same category and subcategory across runs.
type product struct {
	id          string
	category    string
	subcategory string
}

// categoryWeights skews category selection toward high-volume retail
// segments. Order matters: it fixes both catalog layout and draw mapping.
var categoryWeights = []struct {
	name   string
	subs   [2]string
	weight int
}{
	{"Electronics", [2]string{"Phones", "Accessories"}, 18},
	{"Clothing", [2]string{"Menswear", "Womenswear"}, 16},
	{"Books", [2]string{"Fiction", "Technical"}, 8},
	{"Home & Garden", [2]string{"Furniture", "Decor"}, 12},
	{"Sports", [2]string{"Fitness", "Outdoor"}, 10},
	{"Beauty", [2]string{"Skincare", "Fragrance"}, 10},
	{"Toys", [2]string{"Board Games", "Educational"}, 7},
	{"Food", [2]string{"Snacks", "Beverages"}, 9},
	{"Health", [2]string{"Supplements", "Personal Care"}, 6},
	{"Tools", [2]string{"Hand Tools", "Power Tools"}, 4},
}

var paymentMethods = []string{
	"Credit Card", "Boleto", "Pix", "PayPal",
	"Apple Pay", "Google Pay", "Debit Card",
}

// orderStatuses with cumulative weights summing to 100.
var orderStatuses = []struct {
	name   string
	weight int
}{
	{"Delivered", 70},
	{"Processing", 10},
	{"Shipped", 15},
	{"Cancelled", 5},
}

var states = []string{
	"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "PE", "CE", "GO",
	"DF", "PA", "AM", "MA", "ES", "PB", "RN", "MT", "MS", "AL",
}

var regionByState = map[string]string{
	"AC": "North", "AM": "North", "AP": "North", "PA": "North",
	"RO": "North", "RR": "North", "TO": "North",
	"AL": "Northeast", "BA": "Northeast", "CE": "Northeast",
	"MA": "Northeast", "PB": "Northeast", "PE": "Northeast",
	"PI": "Northeast", "RN": "Northeast", "SE": "Northeast",
	"DF": "Midwest", "GO": "Midwest", "MS": "Midwest", "MT": "Midwest",
	"ES": "Southeast", "MG": "Southeast", "RJ": "Southeast", "SP": "Southeast",
	"PR": "South", "RS": "South", "SC": "South",
}

// catalog builds the fixed product list: three products per subcategory,
// IDs assigned sequentially from PROD-10000.
func catalog() []product {
	var out []product
	next := 10000
	for _, c := range categoryWeights {
		for _, sub := range c.subs {
			for i := 0; i < 3; i++ {
				out = append(out, product{
					id:          fmt.Sprintf("PROD-%05d", next),
					category:    c.name,
					subcategory: sub,
				})
				next++
			}
		}
	}
	return out
}

// Generate produces cfg.Count synthetic transactions.
//
// Edge cases:
//   - cfg.Count <= 0 returns a *sales.ParameterError; defaults belong to
//     the config layer, not here.
//   - an inverted Start/End window is swapped silently.
//
// The function has no side effects: no I/O, no global random source.
func Generate(cfg Config) ([]sales.Transaction, error) {
	if cfg.Count <= 0 {
		return nil, &sales.ParameterError{Param: "count", Value: cfg.Count, Reason: "must be a positive integer"}
	}

	start, end := cfg.Start, cfg.End
	if end.IsZero() {
		end = sales.DateOnly(time.Now())
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -365)
	}
	start, end = sales.DateOnly(start), sales.DateOnly(end)
	if end.Before(start) {
		start, end = end, start
	}
	spanDays := int(end.Sub(start).Hours()/24) + 1

	rng := rand.New(rand.NewSource(cfg.Seed))
	products := catalog()

	// Group catalog indexes by category so a weighted category draw maps
	// to a uniform product draw inside that category.
	byCategory := make(map[string][]int, len(categoryWeights))
	totalWeight := 0
	for i, p := range products {
		byCategory[p.category] = append(byCategory[p.category], i)
	}
	for _, c := range categoryWeights {
		totalWeight += c.weight
	}

	out := make([]sales.Transaction, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		day := start.AddDate(0, 0, rng.Intn(spanDays))
		// Purchases land inside store hours, 08:00 to 23:59.
		ts := time.Date(day.Year(), day.Month(), day.Day(),
			8+rng.Intn(16), rng.Intn(60), rng.Intn(60), 0, time.UTC)

		cat := drawCategory(rng, totalWeight)
		idx := byCategory[cat][rng.Intn(len(byCategory[cat]))]
		p := products[idx]

		price := round2(10.0 + rng.Float64()*490.0)
		qty := 1 + rng.Intn(5)
		status := drawStatus(rng)
		state := states[rng.Intn(len(states))]
		payment := paymentMethods[rng.Intn(len(paymentMethods))]
		shipping := round2(5.0 + rng.Float64()*25.0)
		customer := fmt.Sprintf("CUST-%04d", 1000+rng.Intn(9000))

		out = append(out, sales.Transaction{
			ID:            fmt.Sprintf("TRX-%06d", 100000+i),
			Date:          ts,
			ProductID:     p.id,
			Category:      p.category,
			Subcategory:   p.subcategory,
			CustomerID:    customer,
			Region:        regionByState[state],
			State:         state,
			PaymentMethod: payment,
			OrderStatus:   status,
			Quantity:      qty,
			UnitPrice:     price,
			ShippingCost:  shipping,
			LineTotal:     float64(qty) * price,
		})
	}
	return out, nil
}

func drawCategory(rng *rand.Rand, totalWeight int) string {
	n := rng.Intn(totalWeight)
	for _, c := range categoryWeights {
		if n < c.weight {
			return c.name
		}
		n -= c.weight
	}
	return categoryWeights[len(categoryWeights)-1].name
}

func drawStatus(rng *rand.Rand) string {
	n := rng.Intn(100)
	for _, s := range orderStatuses {
		if n < s.weight {
			return s.name
		}
		n -= s.weight
	}
	return orderStatuses[len(orderStatuses)-1].name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
