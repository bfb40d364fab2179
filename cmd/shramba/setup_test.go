package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/shramba/internal/auth"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	require.NoError(t, err)
	b, err := generatePassword(16)
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestCreateAccountPrintsUsablePassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	account, password, err := createAccount(ctx, database, "Bistro", "chef")
	require.NoError(t, err)
	assert.Equal(t, "Bistro", account.Name)

	user, err := store.GetUserByUsername(ctx, database, "chef")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, account.ID, user.AccountID)
	assert.True(t, auth.CheckPassword(user.PasswordHash, password))

	_, _, err = createAccount(ctx, database, "Cafe", "chef")
	assert.ErrorIs(t, err, store.ErrConflict)
}
