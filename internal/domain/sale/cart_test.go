package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiprono/dukapos-api/pkg/apperror"
)

func soda() ProductInfo {
	return ProductInfo{ID: uuid.New(), Name: "Soda", Category: "general", UnitPrice: 10000, Stock: 3}
}

func TestCart_AddItem(t *testing.T) {
	cart := NewCart()
	p := soda()

	require.NoError(t, cart.AddItem(p))
	require.NoError(t, cart.AddItem(p))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(20000), items[0].Total())
}

func TestCart_AddItem_StockCeiling(t *testing.T) {
	cart := NewCart()
	p := soda()
	p.Stock = 2

	require.NoError(t, cart.AddItem(p))
	require.NoError(t, cart.AddItem(p))

	err := cart.AddItem(p)
	assert.ErrorIs(t, err, apperror.ErrStockExceeded)
	assert.Equal(t, 2, cart.Items()[0].Quantity, "quantity unchanged after rejection")
}

func TestCart_AddItem_OutOfStockProduct(t *testing.T) {
	cart := NewCart()
	p := soda()
	p.Stock = 0

	err := cart.AddItem(p)
	assert.ErrorIs(t, err, apperror.ErrStockExceeded)
	assert.True(t, cart.IsEmpty())
}

func TestCart_SetQuantity(t *testing.T) {
	cart := NewCart()
	p := soda()
	require.NoError(t, cart.AddItem(p))

	require.NoError(t, cart.SetQuantity(p.ID, 3))
	assert.Equal(t, 3, cart.Items()[0].Quantity)
}

func TestCart_SetQuantity_ClampsAtStock(t *testing.T) {
	cart := NewCart()
	p := soda()
	require.NoError(t, cart.AddItem(p))

	err := cart.SetQuantity(p.ID, 10)
	assert.ErrorIs(t, err, apperror.ErrStockExceeded)
	assert.Equal(t, p.Stock, cart.Items()[0].Quantity, "clamped to known stock")
}

func TestCart_SetQuantity_SoldOutRemovesLine(t *testing.T) {
	cart := NewCart()
	p := soda()
	require.NoError(t, cart.AddItem(p))

	cart.RefreshStock(p.ID, 0)

	err := cart.SetQuantity(p.ID, 3)
	assert.ErrorIs(t, err, apperror.ErrStockExceeded)
	assert.True(t, cart.IsEmpty(), "sold-out line dropped rather than kept at zero")
}

func TestCart_SetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart()
	p := soda()
	require.NoError(t, cart.AddItem(p))

	require.NoError(t, cart.SetQuantity(p.ID, 0))
	assert.True(t, cart.IsEmpty())
}

func TestCart_SetQuantity_UnknownLine(t *testing.T) {
	cart := NewCart()

	err := cart.SetQuantity(uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestCart_RemoveItem_PreservesOrder(t *testing.T) {
	cart := NewCart()
	a, b, c := soda(), soda(), soda()
	b.Name, c.Name = "Bread", "Milk"
	require.NoError(t, cart.AddItem(a))
	require.NoError(t, cart.AddItem(b))
	require.NoError(t, cart.AddItem(c))

	cart.RemoveItem(b.ID)

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Soda", items[0].Name)
	assert.Equal(t, "Milk", items[1].Name)

	// Index map still tracks the shifted lines.
	require.NoError(t, cart.SetQuantity(c.ID, 2))
	assert.Equal(t, 2, cart.Items()[1].Quantity)
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	customerID := uuid.New()
	require.NoError(t, cart.AddItem(soda()))
	cart.SetCustomer(&customerID)
	cart.SetNote("table 4")

	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.CustomerID())
	assert.Empty(t, cart.Note())
}

func TestCart_SnapshotRoundTrip(t *testing.T) {
	cart := NewCart()
	customerID := uuid.New()
	a, b := soda(), soda()
	b.Name = "Bread"
	require.NoError(t, cart.AddItem(a))
	require.NoError(t, cart.AddItem(a))
	require.NoError(t, cart.AddItem(b))
	cart.SetCustomer(&customerID)
	cart.SetNote("table 4")

	snap := cart.Snapshot()
	restored := RestoreCart(snap)

	assert.Equal(t, cart.Items(), restored.Items())
	assert.Equal(t, cart.CustomerID(), restored.CustomerID())
	assert.Equal(t, cart.Note(), restored.Note())

	// The snapshot is a deep copy: mutating the original cart afterwards
	// must not leak into it.
	require.NoError(t, cart.SetQuantity(a.ID, 1))
	assert.Equal(t, 2, snap.Items[0].Quantity)
}
