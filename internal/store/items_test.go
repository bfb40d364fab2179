package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	item, err := CreateItem(ctx, database, acct, model.ItemInput{
		Name:    "  San Marzano tomatoes ",
		Barcode: "3800001",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "San Marzano tomatoes" {
		t.Errorf("expected trimmed name, got %q", item.Name)
	}
	if item.Unit != model.DefaultUnit {
		t.Errorf("expected default unit %q, got %q", model.DefaultUnit, item.Unit)
	}
	if item.Barcode != "3800001" {
		t.Errorf("expected barcode, got %q", item.Barcode)
	}
}

func TestCreateItemValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	other := mustAccount(t, database, "other")
	foreignStore := mustStore(t, database, other, "Elsewhere")

	if _, err := CreateItem(ctx, database, acct, model.ItemInput{Name: "   "}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := CreateItem(ctx, database, acct, model.ItemInput{Name: "Salt", MinStock: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative min stock, got %v", err)
	}
	if _, err := CreateItem(ctx, database, acct, model.ItemInput{Name: "Salt", StoreID: &foreignStore.ID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign store, got %v", err)
	}
}

func TestListItemsFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	kitchen := mustStore(t, database, acct, "Kitchen")

	mustItem(t, database, acct, model.ItemInput{Name: "Basil", StoreID: &kitchen.ID})
	mustItem(t, database, acct, model.ItemInput{Name: "Olive oil"})

	all, _ := ListItems(ctx, database, acct, ItemFilter{})
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}

	inKitchen, _ := ListItems(ctx, database, acct, ItemFilter{StoreID: kitchen.ID})
	if len(inKitchen) != 1 || inKitchen[0].Name != "Basil" {
		t.Errorf("expected only Basil in kitchen, got %+v", inKitchen)
	}

	search, _ := ListItems(ctx, database, acct, ItemFilter{Search: "oil"})
	if len(search) != 1 || search[0].Name != "Olive oil" {
		t.Errorf("expected search to find Olive oil, got %+v", search)
	}
}

func TestSoftDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	item := mustItem(t, database, acct, model.ItemInput{Name: "Delete Me"})
	if err := DeleteItem(ctx, database, acct, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	items, _ := ListItems(ctx, database, acct, ItemFilter{})
	if len(items) != 0 {
		t.Errorf("expected 0 items after soft delete, got %d", len(items))
	}

	got, _ := GetItem(ctx, database, acct, item.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted item to remain readable with deleted_at set")
	}

	matching, _ := ListItemsForMatching(ctx, database, acct, 0)
	if len(matching) != 0 {
		t.Errorf("expected deleted item to be excluded from matching, got %d", len(matching))
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	item := mustItem(t, database, acct, model.ItemInput{Name: "Lemon"})

	if err := SetItemImage(ctx, database, acct, item.ID, []byte{0xff, 0xd8}, "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}
	data, mime, err := GetItemImage(ctx, database, acct, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if mime != "image/jpeg" || len(data) != 2 {
		t.Errorf("unexpected image %q (%d bytes)", mime, len(data))
	}

	other := mustAccount(t, database, "other")
	if err := SetItemImage(ctx, database, other, item.ID, nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across accounts, got %v", err)
	}
}
