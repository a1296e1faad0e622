package models

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name" validate:"required"`
	CategoryID int64     `json:"categoryId" validate:"gt=0"`
	Price      float64   `json:"price" validate:"gt=0"`
	Stock      int64     `json:"stock" validate:"gte=0"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

type SaleItem struct {
	ProductID int64   `json:"productId" validate:"gt=0"`
	Quantity  int64   `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice"`
}

type Sale struct {
	ID            string        `json:"id"`
	Items         []SaleItem    `json:"items" validate:"required,min=1,dive"`
	Total         float64       `json:"total"`
	ClientID      string        `json:"clientId,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash card transfer"`
	CreatedAt     time.Time     `json:"createdAt"`
}
