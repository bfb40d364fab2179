package model

import "time"

// Account is a tenant. Every other record belongs to exactly one account.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
