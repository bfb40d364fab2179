package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"github.com/fatih/color"

	"github.com/erazemk/shramba/internal/auth"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// openDB opens the configured database and ensures the schema (idempotent).
func openDB() (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// createAccount creates an account with an admin user and returns the
// generated password.
func createAccount(ctx context.Context, database *sql.DB, name, adminUsername string) (*model.Account, string, error) {
	password, err := generatePassword(16)
	if err != nil {
		return nil, "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	account, _, err := store.CreateAccountWithAdmin(ctx, database, name, adminUsername, hash)
	if err != nil {
		return nil, "", err
	}
	return account, password, nil
}

// initDatabase creates a new database with a first account and admin user.
func initDatabase(ctx context.Context, accountName, adminUsername string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	account, password, err := createAccount(ctx, database, accountName, adminUsername)
	if err != nil {
		database.Close()
		os.Remove(cfg.DBPath)
		return err
	}

	fmt.Printf("Database created: %s\n", cfg.DBPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	printCredentials(account, adminUsername, password)
	return nil
}

// printCredentials prints a new account's admin login to stdout.
func printCredentials(account *model.Account, username, password string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("Account %s created (id %d).\n", bold(account.Name), account.ID)
	fmt.Println("Admin user:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", bold(password))
	fmt.Println()
	fmt.Println(color.YellowString("Save this password. It cannot be recovered."))
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
