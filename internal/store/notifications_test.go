package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestNotifications(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	other := mustAccount(t, database, "other")
	item := mustItem(t, database, acct, model.ItemInput{Name: "Milk"})

	n, err := CreateNotification(ctx, database, acct, &item.ID, model.NotifyLowStock, "Milk is low")
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	CreateNotification(ctx, database, acct, nil, model.NotifyLowStock, "general")

	unread, _ := ListNotifications(ctx, database, acct, true)
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(unread))
	}

	if err := MarkNotificationRead(ctx, database, other, n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across accounts, got %v", err)
	}
	if err := MarkNotificationRead(ctx, database, acct, n.ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if err := MarkNotificationRead(ctx, database, acct, n.ID); err != nil {
		t.Errorf("marking read twice should succeed: %v", err)
	}

	unread, _ = ListNotifications(ctx, database, acct, true)
	if len(unread) != 1 {
		t.Errorf("expected 1 unread, got %d", len(unread))
	}
	all, _ := ListNotifications(ctx, database, acct, false)
	if len(all) != 2 {
		t.Errorf("expected 2 total, got %d", len(all))
	}
}
