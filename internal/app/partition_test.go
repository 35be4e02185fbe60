package app

import (
	"testing"

	"github.com/lamesahq/comanda/internal/domain"
)

func TestPartitionItems(t *testing.T) {
	t.Parallel()

	claimed := "ticket-1"

	t.Run("splits by menu type", func(t *testing.T) {
		items := []domain.OrderItem{
			{ID: "i1", MenuType: domain.MenuTypeFood},
			{ID: "i2", MenuType: domain.MenuTypeBar},
			{ID: "i3", MenuType: domain.MenuTypeFood},
		}

		kitchen, bar := PartitionItems(items)
		if len(kitchen) != 2 || len(bar) != 1 {
			t.Fatalf("expected 2 kitchen / 1 bar, got %d / %d", len(kitchen), len(bar))
		}
		if kitchen[0].ID != "i1" || kitchen[1].ID != "i3" {
			t.Fatalf("expected input order preserved, got %s, %s", kitchen[0].ID, kitchen[1].ID)
		}
		if bar[0].ID != "i2" {
			t.Fatalf("expected bar item i2, got %s", bar[0].ID)
		}
	})

	t.Run("skips claimed items", func(t *testing.T) {
		items := []domain.OrderItem{
			{ID: "i1", MenuType: domain.MenuTypeFood, KitchenTicketID: &claimed},
			{ID: "i2", MenuType: domain.MenuTypeFood},
			{ID: "i3", MenuType: domain.MenuTypeBar, BarTicketID: &claimed},
		}

		kitchen, bar := PartitionItems(items)
		if len(kitchen) != 1 || kitchen[0].ID != "i2" {
			t.Fatalf("expected only unclaimed food item, got %v", kitchen)
		}
		if len(bar) != 0 {
			t.Fatalf("expected no bar items, got %d", len(bar))
		}
	})

	t.Run("claim on the other kind does not block", func(t *testing.T) {
		// A food item claimed by a bar ticket can never happen through the
		// pipeline, but the eligibility rule only looks at the matching
		// claim column.
		items := []domain.OrderItem{
			{ID: "i1", MenuType: domain.MenuTypeFood, BarTicketID: &claimed},
		}

		kitchen, bar := PartitionItems(items)
		if len(kitchen) != 1 {
			t.Fatalf("expected food item eligible, got %d", len(kitchen))
		}
		if len(bar) != 0 {
			t.Fatalf("expected no bar items, got %d", len(bar))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		kitchen, bar := PartitionItems(nil)
		if len(kitchen) != 0 || len(bar) != 0 {
			t.Fatalf("expected empty partitions, got %d / %d", len(kitchen), len(bar))
		}
	})
}
