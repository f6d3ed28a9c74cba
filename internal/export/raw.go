package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"salesmart/internal/sales"
)

// WriteRawCSV writes transactions in the flat input layout, the same
// shape the cleaning stage ingests. Used by the generate command to
// produce sample input files.
func WriteRawCSV(path string, records []sales.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"transaction_id", "date", "customer_id", "product_id",
		"product_category", "product_subcategory", "price", "quantity",
		"total_value", "payment_method", "shipping_cost", "state",
		"region", "order_status",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range records {
		tx := &records[i]
		rec := []string{
			tx.ID,
			tx.Date.Format("2006-01-02 15:04:05"),
			tx.CustomerID,
			tx.ProductID,
			tx.Category,
			tx.Subcategory,
			money(tx.UnitPrice),
			strconv.Itoa(tx.Quantity),
			money(tx.LineTotal),
			tx.PaymentMethod,
			money(tx.ShippingCost),
			tx.State,
			tx.Region,
			tx.OrderStatus,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
