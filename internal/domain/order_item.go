package domain

import "time"

type MenuType string

const (
	MenuTypeFood MenuType = "food"
	MenuTypeBar  MenuType = "bar"
)

// OrderItem is a single line of an order. The two claim fields are each set
// at most once for the lifetime of the item: KitchenTicketID for food items
// claimed by a kitchen ticket, BarTicketID for bar items claimed by a bar
// ticket. Claims are written only inside the generation transaction.
type OrderItem struct {
	ID                  string
	OrderID             string
	DishID              string
	DishName            string
	Quantity            int
	SpecialInstructions string
	MenuType            MenuType
	KitchenTicketID     *string
	BarTicketID         *string
	CreatedAt           time.Time
}

// ClaimedBy reports whether the item already belongs to a ticket of the
// given kind.
func (i OrderItem) ClaimedBy(kind TicketKind) bool {
	switch kind {
	case TicketKindKitchen:
		return i.KitchenTicketID != nil
	case TicketKindBar:
		return i.BarTicketID != nil
	}
	return false
}
