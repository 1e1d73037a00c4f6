package datetime

import (
	"testing"
)

func TestMustParseTime(t *testing.T) {
	result := MustParseTime(DateLayout, "1985-04-12")
	if result.Format(DateLayout) != "1985-04-12" {
		t.Errorf("MustParseTime() = %s, expected 1985-04-12", result.Format(DateLayout))
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateLayout, "invalid-date")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"ISO layout", "1990-02-28", "1990-02-28", false},
		{"Swiss layout", "28.02.1990", "1990-02-28", false},
		{"Surrounding spaces", " 1990-02-28 ", "1990-02-28", false},
		{"Invalid day", "1990-02-30", "", true},
		{"Slashes", "28/02/1990", "", true},
		{"Empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if result.Format(DateLayout) != tt.expected {
				t.Errorf("ParseDate(%q) = %s, expected %s", tt.input, result.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestAgeAt(t *testing.T) {
	now := MustParseTime(DateLayout, "2026-10-17")
	tests := []struct {
		name     string
		birth    string
		expected int
	}{
		{"Birthday today", "2008-10-17", 18},
		{"Birthday tomorrow", "2008-10-18", 17},
		{"Birthday yesterday", "2008-10-16", 18},
		{"Earlier month", "1926-01-01", 100},
		{"Later month", "1926-12-01", 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeAt(MustParseTime(DateLayout, tt.birth), now); got != tt.expected {
				t.Errorf("AgeAt(%s) = %d, expected %d", tt.birth, got, tt.expected)
			}
		})
	}
}
