package core

import (
	"testing"
	"time"
)

func TestMonthAddMonthsRollover(t *testing.T) {
	cases := []struct {
		start string
		n     int
		want  string
	}{
		{"2024-01", 1, "2024-02"},
		{"2024-11", 2, "2025-01"},
		{"2024-12", 1, "2025-01"},
		{"2024-11", 14, "2026-01"},
		{"2024-03", -3, "2023-12"},
		{"2024-06", 0, "2024-06"},
	}
	for _, tc := range cases {
		m, err := ParseMonth(tc.start)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.start, err)
		}
		if got := m.AddMonths(tc.n).String(); got != tc.want {
			t.Fatalf("%s + %d months: expected %s, got %s", tc.start, tc.n, tc.want, got)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	dec := NewMonth(2024, time.December)

	if got := dec.Next().String(); got != "2025-01" {
		t.Fatalf("next: got %s", got)
	}
	if !dec.Contains(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("window start should be inclusive")
	}
	if !dec.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("December 31 should be inside")
	}
	if dec.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("January 1 should be excluded")
	}
	if dec.Contains(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("November 30 should be excluded")
	}
}

func TestMonthParseAndValidate(t *testing.T) {
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := ParseMonth("nope"); err == nil {
		t.Fatal("expected error for garbage")
	}
	m, err := ParseMonth("2024-07")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Year() != 2024 || m.Month() != time.July {
		t.Fatalf("parsed %v", m)
	}
	if err := (Month{}).Validate(); err == nil {
		t.Fatal("zero month should not validate")
	}
	if got := m.Time(); got.Day() != 1 || got.Hour() != 0 {
		t.Fatalf("time not normalized to day 1: %v", got)
	}
}
