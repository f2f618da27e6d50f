package rdap

import (
	"context"
	"errors"
	"testing"
	"time"

	rdaplib "github.com/openrdap/rdap"
)

func TestAgeScore(t *testing.T) {
	days := func(n int) *int { return &n }

	cases := []struct {
		name    string
		ageDays *int
		want    float64
	}{
		{name: "unknown", ageDays: nil, want: 50},
		{name: "brand new", ageDays: days(0), want: 20},
		{name: "29 days", ageDays: days(29), want: 20},
		{name: "30 days", ageDays: days(30), want: 45},
		{name: "89 days", ageDays: days(89), want: 45},
		{name: "90 days", ageDays: days(90), want: 70},
		{name: "364 days", ageDays: days(364), want: 70},
		{name: "365 days", ageDays: days(365), want: 100},
		{name: "1000 days", ageDays: days(1000), want: 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AgeScore(tc.ageDays); got != tc.want {
				t.Errorf("AgeScore() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildResult(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	d := &rdaplib.Domain{
		Status: []string{"active"},
		Events: []rdaplib.Event{
			{Action: "registration", Date: "2025-05-22T00:00:00Z"},
			{Action: "expiration", Date: "2026-05-22T00:00:00Z"},
			{Action: "last changed", Date: "not a date"},
		},
		Entities: []rdaplib.Entity{
			{Roles: []string{"technical"}, Handle: "TECH-1"},
			{Roles: []string{"Registrar"}, Handle: "REG-42"},
		},
	}

	result := buildResult("example.com", d, now)

	if result.DomainAgeDays == nil || *result.DomainAgeDays != 10 {
		t.Fatalf("expected 10 day age, got %v", result.DomainAgeDays)
	}

	if result.ExpirationDate == nil || result.ExpirationDate.Year() != 2026 {
		t.Errorf("unexpected expiration %v", result.ExpirationDate)
	}

	if result.Registrar != "REG-42" {
		t.Errorf("expected registrar REG-42, got %q", result.Registrar)
	}
}

func TestBuildResultWithoutRegistration(t *testing.T) {
	result := buildResult("example.com", &rdaplib.Domain{}, time.Now())

	if result.DomainAgeDays != nil {
		t.Fatalf("expected unknown age, got %d", *result.DomainAgeDays)
	}
}

func TestBuildResultFutureRegistrationClampsToZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := &rdaplib.Domain{Events: []rdaplib.Event{{Action: "registration", Date: "2025-06-03T00:00:00Z"}}}

	result := buildResult("example.com", d, now)
	if result.DomainAgeDays == nil || *result.DomainAgeDays != 0 {
		t.Fatalf("expected age clamped to 0, got %v", result.DomainAgeDays)
	}
}

func TestRegistrableDomain(t *testing.T) {
	cases := []struct {
		host    string
		want    string
		wantErr error
	}{
		{host: "login.secure.example.co.uk", want: "example.co.uk"},
		{host: "Example.COM.", want: "example.com"},
		{host: "   ", wantErr: ErrEmptyDomain},
		{host: "203.0.113.7", wantErr: ErrUnregistrable},
		{host: "com", wantErr: ErrUnregistrable},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			got, err := RegistrableDomain(tc.host)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}

				return
			}

			if err != nil || got != tc.want {
				t.Fatalf("RegistrableDomain(%q) = %q, %v; want %q", tc.host, got, err, tc.want)
			}
		})
	}
}

func TestClientLookupEmptyDomain(t *testing.T) {
	_, err := NewClient().Lookup(context.Background(), "   ")

	if !errors.Is(err, ErrEmptyDomain) {
		t.Fatalf("expected ErrEmptyDomain, got %v", err)
	}
}
