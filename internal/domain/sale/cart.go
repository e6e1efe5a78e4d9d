package sale

import (
	"github.com/google/uuid"

	"github.com/kiprono/dukapos-api/pkg/apperror"
)

// ProductInfo is a read-only copy of a catalog product. Stock is a snapshot
// taken when the product was fetched and may be stale by commit time; the
// stock-mutation service is the final authority.
type ProductInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitPrice int64     `json:"unit_price"`
	Stock     int       `json:"stock"`
}

// LineItem is one product plus a quantity within a cart.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	UnitPrice int64     `json:"unit_price"`
	Stock     int       `json:"stock"`
	Quantity  int       `json:"quantity"`
}

// Total returns the line total in cents.
func (li LineItem) Total() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Snapshot is a deep copy of a cart's state, used for parking and for
// rendering. Restoring a snapshot yields a cart deep-equal to the original.
type Snapshot struct {
	Items      []LineItem `json:"items"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// Cart holds the in-progress sale's line items keyed by product, preserving
// insertion order for display. One line per product.
type Cart struct {
	items      []LineItem
	index      map[uuid.UUID]int
	customerID *uuid.UUID
	note       string
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{index: make(map[uuid.UUID]int)}
}

// AddItem adds one unit of the product. An existing line is incremented by
// one; a new line starts at quantity one. Incrementing past the product's
// known stock fails with ErrStockExceeded rather than silently doing
// nothing, so programmatic callers (barcode scans) can tell the difference.
func (c *Cart) AddItem(p ProductInfo) error {
	if i, ok := c.index[p.ID]; ok {
		line := &c.items[i]
		// Refresh the stock snapshot; the caller just read the product.
		line.Stock = p.Stock
		if line.Quantity+1 > p.Stock {
			return apperror.ErrStockExceeded
		}
		line.Quantity++
		return nil
	}

	if p.Stock < 1 {
		return apperror.ErrStockExceeded
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		UnitPrice: p.UnitPrice,
		Stock:     p.Stock,
		Quantity:  1,
	})
	return nil
}

// SetQuantity sets a line's quantity. Zero or negative removes the line.
// A quantity above the product's known stock is clamped to the stock and
// reported as ErrStockExceeded so the caller can surface the constraint;
// a sold-out line (stock zero) is removed outright.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	i, ok := c.index[productID]
	if !ok {
		return apperror.NewNotFoundError("Line item")
	}

	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}

	line := &c.items[i]
	if quantity > line.Stock {
		// A line never carries quantity zero; a sold-out snapshot drops it.
		if line.Stock <= 0 {
			c.RemoveItem(productID)
			return apperror.ErrStockExceeded
		}
		line.Quantity = line.Stock
		return apperror.ErrStockExceeded
	}
	line.Quantity = quantity
	return nil
}

// RefreshStock updates a line's stock snapshot from a fresh catalog read.
func (c *Cart) RefreshStock(productID uuid.UUID, stock int) {
	if i, ok := c.index[productID]; ok {
		c.items[i].Stock = stock
	}
}

// RemoveItem deletes a line entirely.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ProductID] = j
	}
}

// Clear empties the cart, including customer reference and note.
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[uuid.UUID]int)
	c.customerID = nil
	c.note = ""
}

// SetCustomer attaches (or detaches, with nil) the customer reference.
func (c *Cart) SetCustomer(customerID *uuid.UUID) {
	if customerID == nil {
		c.customerID = nil
		return
	}
	id := *customerID
	c.customerID = &id
}

// SetNote sets the free-text note.
func (c *Cart) SetNote(note string) {
	c.note = note
}

// CustomerID returns the attached customer reference, nil when none.
func (c *Cart) CustomerID() *uuid.UUID {
	if c.customerID == nil {
		return nil
	}
	id := *c.customerID
	return &id
}

// Note returns the free-text note.
func (c *Cart) Note() string {
	return c.note
}

// Items returns the line items in insertion order. The slice is a copy.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Snapshot returns a deep copy of the cart's state.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:      c.Items(),
		CustomerID: c.CustomerID(),
		Note:       c.note,
	}
}

// RestoreCart builds a cart from a snapshot, verbatim.
func RestoreCart(s Snapshot) *Cart {
	cart := NewCart()
	cart.items = make([]LineItem, len(s.Items))
	copy(cart.items, s.Items)
	for i, item := range cart.items {
		cart.index[item.ProductID] = i
	}
	cart.SetCustomer(s.CustomerID)
	cart.note = s.Note
	return cart
}
