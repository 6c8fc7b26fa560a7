package models

import (
	"strings"
	"testing"
	"time"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{"all parts", Person{FirstName: "Alice", MiddleName: "Marie", LastName: "Thompson"}, "Alice Marie Thompson"},
		{"no middle", Person{FirstName: "Bob", LastName: "Smith"}, "Bob Smith"},
		{"first only", Person{FirstName: "Cher"}, "Cher"},
		{"empty", Person{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.person.FullName(); got != tt.want {
				t.Fatalf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenderIsValid(t *testing.T) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderUnspecified} {
		if !g.IsValid() {
			t.Fatalf("expected %q to be valid", g)
		}
	}
	for _, g := range []Gender{"", "X", "male", "MF"} {
		if g.IsValid() {
			t.Fatalf("expected %q to be invalid", g)
		}
	}
}

func TestTimeSinceUnsetDates(t *testing.T) {
	var p Person
	if p.TimeSinceBirth() != nil {
		t.Fatal("expected nil time since birth for unset date")
	}
	if p.TimeSinceDeath() != nil {
		t.Fatal("expected nil time since death for unset date")
	}
	if p.TimeSinceModification() != nil {
		t.Fatal("expected nil time since modification for zero timestamp")
	}
}

func TestTimeSinceBirth(t *testing.T) {
	born := time.Date(1964, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Person{DateOfBirth: &born}
	delta := p.TimeSinceBirth()
	if delta == nil {
		t.Fatal("expected a delta for a set birth date")
	}
	if delta.Years < 60 || delta.Months < 0 || delta.Days < 0 {
		t.Fatalf("unexpected delta since 1964-01-01: %+v", delta)
	}
	if delta.Hours != nil {
		t.Fatal("date-only delta must not carry clock components")
	}
}

func TestUserPasswordHashing(t *testing.T) {
	var u User
	if err := u.SetPassword("hunter2"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if u.PasswordHash == "hunter2" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", u.PasswordHash)
	}
	if !u.CheckPassword("hunter2") {
		t.Fatal("CheckPassword rejected the correct password")
	}
	if u.CheckPassword("wrong") {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}
