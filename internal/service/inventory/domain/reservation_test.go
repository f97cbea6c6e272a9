// internal/service/inventory/domain/reservation_test.go
package domain

import (
	"errors"
	"testing"
)

func TestNewReservationValidation(t *testing.T) {
	valid := []ReservationItem{{Sku: "SKU-001", Quantity: 1}}

	testCases := []struct {
		name    string
		orderID string
		items   []ReservationItem
		wantErr error
	}{
		{"valid", "order-1", valid, nil},
		{"empty order id", "", valid, ErrEmptyOrderID},
		{"no items", "order-1", nil, ErrEmptyItems},
		{"zero quantity", "order-1", []ReservationItem{{Sku: "SKU-001", Quantity: 0}}, ErrInvalidItem},
		{"negative quantity", "order-1", []ReservationItem{{Sku: "SKU-001", Quantity: -3}}, ErrInvalidItem},
		{"empty sku", "order-1", []ReservationItem{{Sku: "", Quantity: 1}}, ErrInvalidItem},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReservation(tc.orderID, tc.items)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewReservation error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && r.Status != StatusPending {
				t.Fatalf("new reservation status = %s, want PENDING", r.Status)
			}
		})
	}
}

func TestReservationStateMachine(t *testing.T) {
	newPending := func(t *testing.T) *Reservation {
		r, err := NewReservation("order-1", []ReservationItem{{Sku: "SKU-001", Quantity: 1}})
		if err != nil {
			t.Fatal(err)
		}
		return r
	}

	t.Run("pending to confirmed", func(t *testing.T) {
		r := newPending(t)
		if err := r.Confirm(); err != nil {
			t.Fatalf("Confirm() = %v", err)
		}
		if r.Status != StatusConfirmed || r.IsPending() {
			t.Fatalf("status = %s, want CONFIRMED", r.Status)
		}
	})

	t.Run("pending to cancelled", func(t *testing.T) {
		r := newPending(t)
		if err := r.Cancel(); err != nil {
			t.Fatalf("Cancel() = %v", err)
		}
		if r.Status != StatusCancelled {
			t.Fatalf("status = %s, want CANCELLED", r.Status)
		}
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		confirmed := newPending(t)
		confirmed.Confirm()
		if err := confirmed.Cancel(); !errors.Is(err, ErrInvalidReservationState) {
			t.Fatalf("Cancel() on confirmed = %v, want ErrInvalidReservationState", err)
		}
		if err := confirmed.Confirm(); !errors.Is(err, ErrInvalidReservationState) {
			t.Fatalf("Confirm() on confirmed = %v, want ErrInvalidReservationState", err)
		}

		cancelled := newPending(t)
		cancelled.Cancel()
		if err := cancelled.Confirm(); !errors.Is(err, ErrInvalidReservationState) {
			t.Fatalf("Confirm() on cancelled = %v, want ErrInvalidReservationState", err)
		}
	})
}

func TestInsufficientStockErrorUnwrap(t *testing.T) {
	var err error = &InsufficientStockError{Sku: "SKU-002"}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("InsufficientStockError should unwrap to ErrInsufficientStock")
	}
	var target *InsufficientStockError
	if !errors.As(err, &target) || target.Sku != "SKU-002" {
		t.Fatalf("errors.As failed or wrong sku: %+v", target)
	}
}
