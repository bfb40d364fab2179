package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestCreateAndGetStore(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	s, err := CreateStore(ctx, database, acct, "Main kitchen", "Trubarjeva 1")
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	if s.Name != "Main kitchen" || s.Address != "Trubarjeva 1" {
		t.Errorf("unexpected store %+v", s)
	}

	got, err := GetStore(ctx, database, acct, s.ID)
	if err != nil {
		t.Fatalf("GetStore: %v", err)
	}
	if got == nil || got.ID != s.ID {
		t.Fatalf("expected store %d, got %+v", s.ID, got)
	}

	other := mustAccount(t, database, "other")
	foreign, err := GetStore(ctx, database, other, s.ID)
	if err != nil {
		t.Fatalf("GetStore: %v", err)
	}
	if foreign != nil {
		t.Error("expected nil for store of another account")
	}
}

func TestListStores(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	mustStore(t, database, acct, "Bar")
	mustStore(t, database, acct, "Kitchen")

	stores, err := ListStores(ctx, database, acct)
	if err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
	if stores[0].Name != "Bar" {
		t.Errorf("expected stores sorted by name, got %q first", stores[0].Name)
	}
}

func TestDeleteStoreWithStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	s := mustStore(t, database, acct, "Kitchen")
	item := mustItem(t, database, acct, model.ItemInput{Name: "Flour", Unit: "kg"})

	if _, err := RecordMovement(ctx, database, acct, model.StockMovement{
		StoreID: s.ID, ItemID: item.ID, Type: model.MovementPurchase, Quantity: 5, OccurredAt: time.Now(),
	}); err != nil {
		t.Fatalf("RecordMovement: %v", err)
	}

	if err := DeleteStore(ctx, database, acct, s.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	empty := mustStore(t, database, acct, "Empty")
	if err := DeleteStore(ctx, database, acct, empty.ID); err != nil {
		t.Fatalf("DeleteStore: %v", err)
	}
	stores, _ := ListStores(ctx, database, acct)
	if len(stores) != 1 {
		t.Errorf("expected 1 store after delete, got %d", len(stores))
	}
}
