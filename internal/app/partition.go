package app

import "github.com/lamesahq/comanda/internal/domain"

// PartitionItems splits an order's items into the sets eligible for a new
// kitchen ticket and a new bar ticket. An item is eligible for a kind when
// its menu type matches and it has not been claimed by a ticket of that
// kind. Pure and deterministic; input order is preserved, which downstream
// numbering and printed layout rely on.
func PartitionItems(items []domain.OrderItem) (kitchen, bar []domain.OrderItem) {
	for _, item := range items {
		switch item.MenuType {
		case domain.MenuTypeFood:
			if item.KitchenTicketID == nil {
				kitchen = append(kitchen, item)
			}
		case domain.MenuTypeBar:
			if item.BarTicketID == nil {
				bar = append(bar, item)
			}
		}
	}
	return kitchen, bar
}
