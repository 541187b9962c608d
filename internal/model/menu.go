package model

// MenuItem is a pizza on the menu. Price is in the menu currency unit.
type MenuItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" binding:"gte=0"`
}
