package shared

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"volunteer", RoleVolunteer, false},
		{"organization", RoleOrganization, false},
		{"admin", RoleAdmin, false},
		{"", "", true},
		{"Volunteer", "", true},
		{"superuser", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleVolunteer, RoleOrganization, RoleAdmin} {
		if !role.Valid() {
			t.Errorf("Expected %v to be valid", role)
		}
	}
	if Role("guest").Valid() {
		t.Error("Expected guest to be invalid")
	}
	if Role("").Valid() {
		t.Error("Expected empty role to be invalid")
	}
}
