package models

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with underscore", "photo_fan_99", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "a123456789012345678901234567890", true},
		{"spaces", "alice smith", true},
		{"special chars", "alice!", true},
		{"trims whitespace", "  alice  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleCreator) || !ValidRole(RoleSubscriber) {
		t.Error("known roles should be valid")
	}
	if ValidRole("admin") {
		t.Error("unknown role should be invalid")
	}
}
