package services

import (
	"testing"
	"time"
)

func TestResolveLifecycleDatesStampsContractDateOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	signedAt, closedAt := ResolveLifecycleDates(true, false, nil, nil, now)
	if signedAt == nil || !signedAt.Equal(now) {
		t.Fatalf("expected contract_signed_at = %v, got %v", now, signedAt)
	}
	if closedAt != nil {
		t.Fatalf("expected closed_at nil, got %v", closedAt)
	}

	later := now.Add(48 * time.Hour)
	signedAt2, _ := ResolveLifecycleDates(true, false, signedAt, nil, later)
	if signedAt2 == nil || !signedAt2.Equal(now) {
		t.Fatalf("expected original contract_signed_at kept, got %v", signedAt2)
	}
}

func TestResolveLifecycleDatesKeepsDatesWhenUnchecked(t *testing.T) {
	original := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	closed := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	signedAt, closedAt := ResolveLifecycleDates(false, false, &original, &closed, now)
	if signedAt == nil || !signedAt.Equal(original) {
		t.Fatalf("unchecking must not erase contract_signed_at, got %v", signedAt)
	}
	if closedAt == nil || !closedAt.Equal(closed) {
		t.Fatalf("unchecking must not erase closed_at, got %v", closedAt)
	}
}

func TestResolveLifecycleDatesClosesOnlyWhenBothChecked(t *testing.T) {
	signed := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, closedAt := ResolveLifecycleDates(false, true, &signed, nil, now)
	if closedAt != nil {
		t.Fatalf("work_completed alone must not close, got %v", closedAt)
	}

	_, closedAt = ResolveLifecycleDates(true, true, &signed, nil, now)
	if closedAt == nil || !closedAt.Equal(now) {
		t.Fatalf("expected closed_at = %v, got %v", now, closedAt)
	}

	later := now.Add(24 * time.Hour)
	_, closedAt2 := ResolveLifecycleDates(true, true, &signed, closedAt, later)
	if closedAt2 == nil || !closedAt2.Equal(now) {
		t.Fatalf("expected original closed_at kept, got %v", closedAt2)
	}
}
