package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusPreparing: 2,
	OrderStatusReady:     3,
	OrderStatusServed:    4,
}

// Order is the aggregate root owning order items. Only its status is
// advanced by this subsystem; everything else belongs to order entry.
type Order struct {
	ID           string
	Number       string
	BranchID     string
	TableNumber  string
	RoomNumber   string
	CustomerName string
	Notes        string
	Status       OrderStatus
	CreatedAt    time.Time
}

// OrderStatusAdvances reports whether moving from one order status to
// another goes strictly forward. Ticket transitions may only ever push the
// order ahead, never back.
func OrderStatusAdvances(from, to OrderStatus) bool {
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return true
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
