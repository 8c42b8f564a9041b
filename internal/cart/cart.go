package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/internal/money"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
)

// maxUnitPriceCents caps a line's unit price at 999,999.99.
const maxUnitPriceCents = 99_999_999

// Product is the catalog snapshot a line item is priced from.
type Product struct {
	ID          uuid.UUID
	Name        string
	UnitPrice   money.Money
	IsContainer bool
}

// LineItem is one priced line of the cart. Subtotal is recomputed whenever
// the quantity changes, rounding at the operation.
type LineItem struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   money.Money
	Quantity    int
	IsContainer bool
	Subtotal    money.Money
}

// Cart builds a sale's line items. It is owned by a single sale in
// construction and is not safe for concurrent use.
type Cart struct {
	items []LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem appends a priced line for the product. Adding a product already in
// the cart sums quantities on the existing line instead of duplicating it.
func (c *Cart) AddItem(product Product, quantity int) error {
	if err := validateLine(product, quantity); err != nil {
		return err
	}

	for i := range c.items {
		if c.items[i].ProductID == product.ID {
			return c.setQuantity(i, c.items[i].Quantity+quantity)
		}
	}

	c.items = append(c.items, LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.UnitPrice,
		Quantity:    quantity,
		IsContainer: product.IsContainer,
		Subtotal:    product.UnitPrice.Multiply(quantity),
	})
	return nil
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity replaces the line's quantity and recomputes its subtotal.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return c.setQuantity(i, quantity)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is not in the cart", productID))
}

// Subtotal sums the line subtotals.
func (c *Cart) Subtotal() money.Money {
	sum := money.Zero
	for _, item := range c.items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// Total applies the discount to the subtotal. A discount greater than the
// subtotal fails; a discount equal to the subtotal yields a zero total.
func (c *Cart) Total(discount money.Money) (money.Money, error) {
	subtotal := c.Subtotal()
	if discount.Compare(money.Zero) < 0 {
		return money.Zero, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	if discount.Compare(subtotal) > 0 {
		return money.Zero, pkgerrors.New(pkgerrors.CodeDiscountExceedsTotal, "total discount exceeds subtotal")
	}
	return subtotal.Sub(discount)
}

// ContainerCount sums quantities across returnable-container lines.
func (c *Cart) ContainerCount() int {
	count := 0
	for _, item := range c.items {
		if item.IsContainer {
			count += item.Quantity
		}
	}
	return count
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) setQuantity(i, quantity int) error {
	c.items[i].Quantity = quantity
	c.items[i].Subtotal = c.items[i].UnitPrice.Multiply(quantity)
	return nil
}

func validateLine(product Product, quantity int) error {
	if product.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if !product.UnitPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	if product.UnitPrice.Cents() > maxUnitPriceCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price exceeds the allowed maximum")
	}
	return nil
}
