package game

import (
	"errors"
	"testing"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		text     string
		wantCell int
		wantErr  error
	}{
		{name: "first cell", role: RoleFirst, text: "1", wantCell: 0},
		{name: "middle cell", role: RoleFirst, text: "5", wantCell: 4},
		{name: "last cell", role: RoleSecond, text: "9", wantCell: 8},
		{name: "trailing text ignored", role: RoleFirst, text: "5<-X", wantCell: 4},
		{name: "only first byte counts", role: RoleFirst, text: "19", wantCell: 0},
		{name: "zero is out of range", role: RoleFirst, text: "0", wantErr: ErrBadMove},
		{name: "letter", role: RoleFirst, text: "x", wantErr: ErrBadMove},
		{name: "empty", role: RoleFirst, text: "", wantErr: ErrBadMove},
		{name: "no role", role: RoleNone, text: "5", wantErr: ErrBadRole},
		{name: "bogus role", role: Role(7), text: "5", wantErr: ErrBadRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMove(tt.role, tt.text)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseMove(%v, %q) error = %v; want %v", tt.role, tt.text, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMove(%v, %q): %v", tt.role, tt.text, err)
			}
			if m.Cell() != tt.wantCell {
				t.Errorf("Cell() = %d; want %d", m.Cell(), tt.wantCell)
			}
			if m.Role() != tt.role {
				t.Errorf("Role() = %v; want %v", m.Role(), tt.role)
			}
		})
	}
}

func TestMoveString(t *testing.T) {
	m, err := ParseMove(RoleFirst, "5")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if got := m.String(); got != "5<-X" {
		t.Errorf("String() = %q; want %q", got, "5<-X")
	}

	m, err = ParseMove(RoleSecond, "1")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if got := m.String(); got != "1<-O" {
		t.Errorf("String() = %q; want %q", got, "1<-O")
	}
}

func TestMoveString_RoundTrip(t *testing.T) {
	m, err := ParseMove(RoleSecond, "7")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}

	back, err := ParseMove(m.Role(), m.String())
	if err != nil {
		t.Fatalf("ParseMove(rendered move): %v", err)
	}
	if back != m {
		t.Errorf("round trip = %+v; want %+v", back, m)
	}
}
