package order

import "github.com/shopspring/decimal"

// Cart accumulates lines before an order is placed. Adding an item that is
// already present (same item id and kind) merges into the existing line by
// summing quantities instead of appending a duplicate.
//
// Cart is not safe for concurrent use; it is a per-session scratch value.
type Cart struct {
	lines []CartLine
}

// Add puts an item into the cart, merging with an existing line when the
// same product or menu is already present.
func (c *Cart) Add(itemID int64, name string, isProduct bool, unitPrice decimal.Decimal, quantity int) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID && c.lines[i].IsProduct == isProduct {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, CartLine{
		ItemID:    itemID,
		IsProduct: isProduct,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	})
}

// Remove deletes the line matching the item id and kind, if present.
func (c *Cart) Remove(itemID int64, isProduct bool) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID && c.lines[i].IsProduct == isProduct {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns the accumulated cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	return c.lines
}

// Subtotal returns the sum of line totals over the cart.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}
