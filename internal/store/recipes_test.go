package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestRecipeIngredients(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	tomato := mustItem(t, database, acct, model.ItemInput{Name: "Tomato", Unit: "kg"})
	basil := mustItem(t, database, acct, model.ItemInput{Name: "Basil", Unit: "g"})

	r, err := CreateRecipe(ctx, database, acct, "Marinara", 4, "")
	if err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}
	if r.YieldUnit != "portion" {
		t.Errorf("expected default yield unit, got %q", r.YieldUnit)
	}

	if err := SetIngredient(ctx, database, acct, r.ID, tomato.ID, 1.2, ""); err != nil {
		t.Fatalf("SetIngredient: %v", err)
	}
	if err := SetIngredient(ctx, database, acct, r.ID, basil.ID, 10, "g"); err != nil {
		t.Fatalf("SetIngredient: %v", err)
	}
	// Setting again replaces the line.
	if err := SetIngredient(ctx, database, acct, r.ID, tomato.ID, 1.5, "kg"); err != nil {
		t.Fatalf("SetIngredient: %v", err)
	}

	got, _ := GetRecipe(ctx, database, acct, r.ID)
	if len(got.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(got.Ingredients))
	}
	for _, l := range got.Ingredients {
		if l.ItemID == tomato.ID && (l.Quantity != 1.5 || l.Unit != "kg") {
			t.Errorf("expected tomato line 1.5 kg, got %v %s", l.Quantity, l.Unit)
		}
	}

	if err := SetIngredient(ctx, database, acct, r.ID, tomato.ID, 0, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero quantity, got %v", err)
	}

	if err := RemoveIngredient(ctx, database, acct, r.ID, basil.ID); err != nil {
		t.Fatalf("RemoveIngredient: %v", err)
	}
	got, _ = GetRecipe(ctx, database, acct, r.ID)
	if len(got.Ingredients) != 1 {
		t.Errorf("expected 1 ingredient after removal, got %d", len(got.Ingredients))
	}
}

func TestRecipeScoped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustAccount(t, database, "a")
	b := mustAccount(t, database, "b")
	r, _ := CreateRecipe(ctx, database, a, "Soup", 1, "pot")
	foreignItem := mustItem(t, database, b, model.ItemInput{Name: "Leek"})

	if got, _ := GetRecipe(ctx, database, b, r.ID); got != nil {
		t.Error("expected recipe to be invisible to another account")
	}
	if err := SetIngredient(ctx, database, a, r.ID, foreignItem.ID, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign item, got %v", err)
	}
	if err := DeleteRecipe(ctx, database, b, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting foreign recipe, got %v", err)
	}
}
