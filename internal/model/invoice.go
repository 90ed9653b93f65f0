package model

import "time"

// Invoice records a completed ticket purchase. It is the only entity the
// booking saga creates directly; everything else it touches lives in a peer
// service and is reached through messages or remote lookups.
//
// Fields:
//  ID            – primary key identifier.
//  CustomerID    – customer who paid for the booking.
//  EmployeeID    – employee who processed the sale.
//  PromotionID   – applied promotion, if any.
//  CreatedAt     – when the invoice was committed.
//  PaymentMethod – how the customer paid (e.g. CASH, VNPAY).
//  Total         – total amount in the smallest currency unit.
//  Status        – invoice state; bookings commit as "Completed".
type Invoice struct {
	ID            uint64    `json:"id"`             // invoices.id
	CustomerID    uint64    `json:"customer_id"`    // invoices.customer_id
	EmployeeID    uint64    `json:"employee_id"`    // invoices.employee_id
	PromotionID   *uint64   `json:"promotion_id"`   // invoices.promotion_id (nullable)
	CreatedAt     time.Time `json:"created_at"`     // invoices.created_at
	PaymentMethod string    `json:"payment_method"` // invoices.payment_method
	Total         int64     `json:"total"`          // invoices.total
	Status        string    `json:"status"`         // invoices.status
}

// StatusCompleted is the state a booking saga commits an invoice in.
const StatusCompleted = "Completed"

// InvoiceFood is a concession line item attached to an invoice. Its lifetime
// is bounded by the owning invoice: cancellation deletes line items first.
type InvoiceFood struct {
	ID        uint64 `json:"id"`         // invoice_foods.id
	InvoiceID uint64 `json:"invoice_id"` // invoice_foods.invoice_id
	FoodID    uint64 `json:"food_id"`    // invoice_foods.food_id
	Quantity  uint32 `json:"quantity"`   // invoice_foods.quantity
}
