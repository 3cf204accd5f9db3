package item_test

import (
	"context"
	"testing"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/database/dbtest"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/item"

	"github.com/shopspring/decimal"
)

func TestItemRepository(t *testing.T) {
	db := dbtest.Open(t, &item.Item{})
	repo := item.NewItemRepository(db)
	ctx := context.Background()

	rows := []*item.Item{
		{ID: 1, SKU: "A-1", Name: "Anvil", QuantityOnHand: 5, Price: decimal.RequireFromString("10.50"), IsActive: true},
		{ID: 2, SKU: "B-2", Name: "Bolt", QuantityOnHand: 0, IsActive: true},
		{ID: 3, SKU: "C-3", Name: "Crate", QuantityOnHand: 9, IsActive: false},
	}
	for _, it := range rows {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	crate, err := repo.FindByID(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if crate.IsActive {
		t.Error("inactive item stored as active")
	}
	anvil, err := repo.FindByID(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !anvil.Price.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("price = %s", anvil.Price)
	}

	tests := []struct {
		name   string
		filter item.ItemFilter
		want   []int64
	}{
		{"active only", item.ItemFilter{}, []int64{1, 2}},
		{"in stock", item.ItemFilter{InStock: true}, []int64{1}},
		{"search", item.ItemFilter{Search: "bol"}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if int(total) != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("got %d rows (total %d), want %v", len(got), total, tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("row %d = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}

	if _, err := repo.FindByID(ctx, 99); err != item.ErrNotFound {
		t.Errorf("missing item err = %v", err)
	}
}

func TestListActiveForItemJoinsActiveUsers(t *testing.T) {
	db := dbtest.Open(t, &account.User{}, &item.Item{}, &item.Subscription{})
	users := account.NewUserRepository(db)
	subs := item.NewSubscriptionRepository(db)
	ctx := context.Background()

	active := &account.User{Email: "dealer@shop.com", Type: models.UserTypeDealer, IsActive: true}
	gone := &account.User{Email: "gone@shop.com", Type: models.UserTypeDealer, IsActive: false}
	for _, u := range []*account.User{active, gone} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	for _, s := range []*item.Subscription{
		{UserID: active.ID, ItemID: 1, Kind: item.KindInStock, IsActive: true},
		{UserID: active.ID, ItemID: 1, Kind: item.KindLowStock, Threshold: 10, IsActive: false},
		{UserID: gone.ID, ItemID: 1, Kind: item.KindInStock, IsActive: true},
		{UserID: active.ID, ItemID: 2, Kind: item.KindInStock, IsActive: true},
	} {
		if err := subs.Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := subs.ListActiveForItem(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("subscriptions = %+v, want one", got)
	}
	if got[0].Kind != item.KindInStock || got[0].SubscriberEmail != "dealer@shop.com" {
		t.Errorf("subscription = %+v", got[0])
	}

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := subs.MarkNotified(ctx, got[0].ID, at); err != nil {
		t.Fatal(err)
	}
	stamped, err := subs.FindByID(ctx, got[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if stamped.LastNotifiedAt == nil || !stamped.LastNotifiedAt.Equal(at) {
		t.Errorf("last_notified_at = %v", stamped.LastNotifiedAt)
	}
}
