package auth

import "testing"

func TestIsValidRole(t *testing.T) {
	valid := []Role{RoleAdmin, RoleOperator, RoleViewer}
	for _, r := range valid {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = false, want true", r)
		}
	}

	invalid := []Role{"", "owner", "Admin", "root", "viewer "}
	for _, r := range invalid {
		if IsValidRole(r) {
			t.Errorf("IsValidRole(%q) = true, want false", r)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"alice", true},
		{"field-tech.2", true},
		{"ab", false},
		{"", false},
		{"Alice", false},
		{"-leading", false},
		{"has space", false},
		{"waaaaaaaaaaaaaaaaaaaaaaaaaaaytoolong", false},
	}

	for _, tt := range tests {
		if got := IsValidUsername(tt.username); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}
