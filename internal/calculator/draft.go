package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/invoicer/internal/models"
)

// Draft is a bill under construction: catalog products with quantities.
// Selection order is preserved.
type Draft struct {
	items []models.LineItem
}

// Add selects a product. Adding an already selected product increments its
// quantity.
func (d *Draft) Add(p models.Product) {
	for i := range d.items {
		if d.items[i].ProductID == p.ID {
			d.items[i].Quantity++
			return
		}
	}
	d.items = append(d.items, models.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// AddQuantity selects a product with an explicit quantity. Quantities below
// one are ignored.
func (d *Draft) AddQuantity(p models.Product, qty int) {
	if qty < 1 {
		return
	}
	d.Add(p)
	d.UpdateQuantity(p.ID, qty-1)
}

// UpdateQuantity changes a selected product's quantity by delta. A change that
// would take the quantity below one is ignored; use Remove instead.
func (d *Draft) UpdateQuantity(productID string, delta int) {
	for i := range d.items {
		if d.items[i].ProductID != productID {
			continue
		}
		if q := d.items[i].Quantity + delta; q > 0 {
			d.items[i].Quantity = q
		}
		return
	}
}

// Remove drops a product from the selection.
func (d *Draft) Remove(productID string) {
	out := d.items[:0]
	for _, it := range d.items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	d.items = out
}

// Len returns the number of distinct products selected.
func (d *Draft) Len() int {
	return len(d.items)
}

// Total returns Σ price × quantity.
func (d *Draft) Total() decimal.Decimal {
	return LineTotal(d.items)
}

// LineItems returns a copy of the selection.
func (d *Draft) LineItems() []models.LineItem {
	out := make([]models.LineItem, len(d.items))
	copy(out, d.items)
	return out
}

// LineTotal returns Σ price × quantity over items.
func LineTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
