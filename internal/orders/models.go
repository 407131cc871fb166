package orders

import "time"

// ProductSnapshot is the product state joined onto a cart line when it is read.
type ProductSnapshot struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price"`
	Stock      int    `json:"stock"`
}

type CartLine struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	ProductID  string          `json:"productId"`
	Qty        int             `json:"qty"`
	TotalCents int64           `json:"total"`
	Product    ProductSnapshot `json:"product"`
}

type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId"`
	Qty        int       `json:"qty"`
	TotalCents int64     `json:"total"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// OrderView is an order joined with the product fields the storefront shows.
type OrderView struct {
	Order
	Product struct {
		Name       string `json:"name"`
		Image      string `json:"image"`
		PriceCents int64  `json:"price"`
	} `json:"product"`
}

type NewOrder struct {
	UserID     string
	ProductID  string
	Qty        int
	TotalCents int64
	Status     Status
}

// Result is what a successful checkout hands back to the caller.
type Result struct {
	Orders      []Order `json:"orders"`
	TotalAmount int64   `json:"totalAmount"`
}
