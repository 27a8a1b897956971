package report

import (
	"github.com/shopspring/decimal"

	"github.com/fastygo/stockdesk/domain"
)

// Aggregate sums the products created inside r. included is the number of
// products counted.
func Aggregate(products []domain.Product, r domain.DateRange) (totals domain.Totals, included int) {
	totals.Value = decimal.Zero
	if r.Status() != domain.RangeValid {
		return totals, 0
	}
	for _, p := range products {
		if !r.Contains(p.CreatedAt) {
			continue
		}
		totals.Units += p.Quantity
		totals.Value = totals.Value.Add(p.StockValue())
		included++
	}
	return totals, included
}
