package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleStaff, true},
		{RoleManager, RoleAdmin, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleStaff, true},
		{RoleStaff, RoleAdmin, false},
		{RoleStaff, RoleManager, false},
		{RoleStaff, RoleStaff, true},
		// Unknown roles fail-closed.
		{"unknown", RoleStaff, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleStaff, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestMovementSign(t *testing.T) {
	tests := []struct {
		movementType string
		expected     float64
	}{
		{MovementPurchase, 1},
		{MovementTransferIn, 1},
		{MovementUsage, -1},
		{MovementWaste, -1},
		{MovementTransferOut, -1},
		{MovementAdjustment, 0},
		{"bogus", 0},
	}

	for _, tt := range tests {
		if got := MovementSign(tt.movementType); got != tt.expected {
			t.Errorf("MovementSign(%q) = %v, want %v", tt.movementType, got, tt.expected)
		}
	}
}

func TestCandidatePairKey(t *testing.T) {
	a := DuplicateCandidate{ItemID: 7, MatchedItemID: 3}
	b := DuplicateCandidate{ItemID: 3, MatchedItemID: 7}
	if a.PairKey() != b.PairKey() {
		t.Errorf("expected unordered pair keys to match, got %v and %v", a.PairKey(), b.PairKey())
	}
	if !a.Involves(7) || !a.Involves(3) || a.Involves(5) {
		t.Error("Involves reported wrong membership")
	}
	if got := a.Other(7); got != 3 {
		t.Errorf("Other(7) = %d, want 3", got)
	}
}
