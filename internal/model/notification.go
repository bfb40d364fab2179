package model

import "time"

// Notification kinds.
const (
	NotifyDuplicateCandidate = "duplicate_candidate"
	NotifyLowStock           = "low_stock"
)

// Notification is an account-wide message shown to users.
type Notification struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"account_id"`
	ItemID    *int64     `json:"item_id,omitempty"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
