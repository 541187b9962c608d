package model

import "time"

// OrderItem is a point-in-time copy of a menu entry; it does not follow later menu changes.
type OrderItem struct {
	ID          int     `json:"id,omitempty"`
	MenuID      int     `json:"menuId" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID          int         `json:"id"`
	DinerID     int         `json:"-"`
	FranchiseID int         `json:"franchiseId"`
	StoreID     int         `json:"storeId"`
	Date        time.Time   `json:"date"`
	Items       []OrderItem `json:"items"`
}

type CreateOrderRequest struct {
	FranchiseID int         `json:"franchiseId" binding:"required"`
	StoreID     int         `json:"storeId" binding:"required"`
	Items       []OrderItem `json:"items" binding:"required,min=1,dive"`
}

// OrderPage is one page of a diner's order history.
type OrderPage struct {
	DinerID int     `json:"dinerId"`
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
}

// CheckoutStatus distinguishes an order that was only persisted from one the factory accepted.
type CheckoutStatus string

const (
	CheckoutFulfilled   CheckoutStatus = "fulfilled"
	CheckoutUnfulfilled CheckoutStatus = "unfulfilled"
)

// CheckoutResult is returned for every persisted order. An unfulfilled result still has
// a stored order; only the factory hand-off failed.
type CheckoutResult struct {
	Status     CheckoutStatus
	Order      *Order
	FactoryJWT string
	ReportURL  string
}

func (r *CheckoutResult) Fulfilled() bool {
	return r != nil && r.Status == CheckoutFulfilled
}
