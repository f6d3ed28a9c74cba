package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"salesmart/internal/config"
)

// Canonical column names, in the positional order rows are aligned to.
// The first nRequired entries must be mappable from the header or the run
// aborts with a SchemaError; the rest are optional.
var canonicalColumns = []string{
	"transaction_id",
	"date",
	"product_id",
	"product_category",
	"product_subcategory",
	"customer_id",
	"region",
	"quantity",
	"unit_price",
	"state",
	"payment_method",
	"order_status",
	"shipping_cost",
}

const nRequired = 9

// defaultAliases maps common header spellings onto canonical names after
// normalization. A user-supplied header_map option is consulted first.
var defaultAliases = map[string]string{
	"price":         "unit_price",
	"category":      "product_category",
	"subcategory":   "product_subcategory",
	"sub_category":  "product_subcategory",
	"customer":      "customer_id",
	"order_date":    "date",
	"purchase_date": "date",
	"qty":           "quantity",
	"freight":       "shipping_cost",
}

func decodeReader(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(encoding) {
	case "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	case "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return r
	}
}

// streamRows reads CSV into pooled *Row values aligned to canonicalColumns
// and sends them on out. It returns a *SchemaError when the header cannot
// satisfy the required columns, and ctx.Err() on cancellation.
//
// NOTE on cancellation: in-flight rows must NOT go back to the pool (Drop
// instead), otherwise the reader can reuse them while the consumer still
// holds a reference.
//
// onErr receives structurally broken records (bad quoting, etc.) that the
// csv reader rejects; streaming continues past them.
func streamRows(
	ctx context.Context,
	src io.Reader,
	opt config.Options,
	out chan<- *Row,
	onErr func(line int, err error),
) error {
	comma := opt.Rune("comma", ',')
	trim := opt.Bool("trim_space", true)
	hm := opt.StringMap("header_map")
	lazy := opt.Bool("lazy_quotes", false)

	cr := csv.NewReader(decodeReader(src, opt.String("encoding", "")))
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = lazy
	cr.FieldsPerRecord = -1

	var line int
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	hdr, err := readRec()
	if err != nil {
		return &SchemaError{Cause: fmt.Errorf("read header: %w", err)}
	}

	srcToIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		norm := strings.ReplaceAll(strings.ToLower(h), " ", "_")
		if mapped, ok := hm[h]; ok {
			norm = mapped
		} else if mapped, ok := hm[norm]; ok {
			norm = mapped
		} else if mapped, ok := defaultAliases[norm]; ok {
			norm = mapped
		}
		srcToIdx[norm] = i
	}

	colIx := make([]int, len(canonicalColumns))
	var missing []string
	for t, target := range canonicalColumns {
		colIx[t] = -1
		if si, ok := srcToIdx[target]; ok {
			colIx[t] = si
		} else if t < nRequired {
			missing = append(missing, target)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}

		row := getRow(len(canonicalColumns))
		row.Line = line

		for t := range canonicalColumns {
			si := colIx[t]
			if si < 0 || si >= len(rec) {
				row.V[t] = nil
				continue
			}
			v := rec[si]
			if trim {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				row.V[t] = nil
			} else {
				row.V[t] = v
			}
		}

		select {
		case out <- row:
		case <-ctx.Done():
			row.Drop()
			return ctx.Err()
		}
	}
}
