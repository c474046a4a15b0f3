// Package orders implements the order collection: the domain model, the
// mutation coordinator that keeps a single authoritative order list in
// sync with the backend, and the derived views computed from it.
package orders

import (
	"time"
)

// Status is the closed set of order lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses returns every declared status.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled,
	}
}

// Valid reports whether s is a declared status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether an order in this status still needs attention.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady:
		return true
	}
	return false
}

// Priority is the closed, totally ordered set of order priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities returns every declared priority in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// Rank returns the position of p in the priority order; unknown values
// rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is a declared priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Item is one line of an order.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is one order as the backend reports it. Orders are uniquely
// identified by ID; the collection carries no required ordering.
type Order struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	CustomerName string    `json:"customer_name,omitempty"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
	Items        []Item    `json:"items"`
}

// CreateRequest is the payload for creating an order.
type CreateRequest struct {
	CustomerName string   `json:"customer_name,omitempty"`
	Priority     Priority `json:"priority,omitempty"`
	Items        []Item   `json:"items"`
	Notes        string   `json:"notes,omitempty"`
}

// UpdateRequest is the payload for updating an order. Nil fields are left
// unchanged by the backend.
type UpdateRequest struct {
	Status   *Status   `json:"status,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Items    []Item    `json:"items,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}
