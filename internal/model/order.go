package model

import "time"

// OrderID uniquely identifies an order. It doubles as the payment id (pid).
type OrderID uint

// Order records a purchase attempt. It starts unpaid and becomes paid at most once.
type Order struct {
	ID       OrderID
	BuyerID  AccountID
	SellerID AccountID
	GameID   GameID

	// Price is the game price when the order was created
	Price Price

	Paid      bool
	CreatedAt time.Time
	PaidAt    *time.Time
}

// StatusLabel renders the paid flag the way the sales API reports it
func (o *Order) StatusLabel() string {
	if o.Paid {
		return OrderStatusPaid
	}
	return OrderStatusNotPaid
}

const (
	OrderStatusPaid    = "paid"
	OrderStatusNotPaid = "not_paid"
)

// OrderFilter selects orders from storage. Nil/zero fields are not applied.
type OrderFilter struct {
	SellerID AccountID
	OrderID  OrderID
	GameID   GameID
	BuyerID  AccountID
	Paid     *bool
}
