package module

import (
	"context"

	"github.com/mesalabs/mesa/internal/ids"
)

// Builtins are the platform's shipped module definitions. Each module's
// bootstrap registers its own definition at process start; this catalog
// gathers them for the apiserver, which hosts every module in one binary.
func Builtins() []Definition {
	return []Definition{
		{
			ID:      ids.ModuleID("menu"),
			Slug:    "menu",
			Name:    "Menu",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "menu.read", Name: "View menu"},
				{ID: "menu.write", Name: "Edit menu", Description: "Create and update categories, items and modifiers"},
			},
			EventTypes: []string{"menu.item.created", "menu.item.updated", "menu.item.archived"},
		},
		{
			ID:      ids.ModuleID("orders"),
			Slug:    "orders",
			Name:    "Orders",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "orders.read", Name: "View orders"},
				{ID: "orders.write", Name: "Manage orders"},
				{ID: "orders.cancel", Name: "Cancel orders"},
			},
			EventTypes: []string{"order.placed", "order.accepted", "order.cancelled", "order.completed"},
		},
		{
			ID:      ids.ModuleID("kds"),
			Slug:    "kitchen-display",
			Name:    "Kitchen Display",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "kds.read", Name: "View kitchen queue"},
				{ID: "kds.bump", Name: "Advance tickets"},
			},
			EventTypes: []string{"kds.ticket.bumped", "kds.ticket.recalled"},
		},
		{
			ID:      ids.ModuleID("pdv"),
			Slug:    "point-of-sale",
			Name:    "Point of Sale",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "pdv.sell", Name: "Register sales"},
				{ID: "pdv.refund", Name: "Issue refunds"},
			},
			EventTypes: []string{"pdv.sale.closed", "pdv.session.opened", "pdv.session.closed"},
		},
		{
			ID:      ids.ModuleID("delivery"),
			Slug:    "delivery",
			Name:    "Delivery",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "delivery.read", Name: "View deliveries"},
				{ID: "delivery.dispatch", Name: "Dispatch couriers"},
			},
			EventTypes:   []string{"delivery.dispatched", "delivery.delivered"},
			RequiredPlan: "plan_pro",
		},
		{
			ID:      ids.ModuleID("crm"),
			Slug:    "crm",
			Name:    "Customer Relationship",
			Version: "1.0.0",
			Permissions: []Permission{
				{ID: "crm.read", Name: "View customers"},
				{ID: "crm.write", Name: "Manage customers"},
			},
			EventTypes:   []string{"crm.customer.created"},
			RequiredPlan: "plan_pro",
		},
	}
}

// RegisterBuiltins registers every shipped definition on the registry.
func RegisterBuiltins(ctx context.Context, registry Registry) error {
	for _, def := range Builtins() {
		if err := registry.Register(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
