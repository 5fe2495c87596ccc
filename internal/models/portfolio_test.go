package models

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   PortfolioStatus
		wantOK bool
	}{
		{"ACTIVE", StatusActive, true},
		{"active", StatusActive, true},
		{" Upcoming ", StatusUpcoming, true},
		{"CLOSED", StatusClosed, true},
		{"ALL", "", false},
		{"", "", false},
		{"pending", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestUserPatchApply(t *testing.T) {
	base := User{ID: "u1", Name: "Alice", Email: "alice@example.com", Phone: "+91 1"}
	name := "Alice Johnson"
	empty := ""

	got := UserPatch{ID: "u1", Name: &name, Phone: &empty}.Apply(base)

	want := User{ID: "u1", Name: "Alice Johnson", Email: "alice@example.com", Phone: ""}
	if got != want {
		t.Errorf("Apply = %+v, want %+v", got, want)
	}
}

func TestUserPatchUser(t *testing.T) {
	email := "bob@example.com"
	got := UserPatch{ID: "u2", Email: &email}.User()
	if got.ID != "u2" || got.Email != email || got.Name != "" {
		t.Errorf("User() = %+v", got)
	}
}
