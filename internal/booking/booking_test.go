package booking

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

var testNow = time.Date(2024, time.June, 1, 15, 4, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var cardiologist = domain.Doctor{ID: 1, Name: "Dr. Rajesh Sharma", Hospital: "Apollo Hospital", ConsultationFee: 500}

func TestHours_Slots(t *testing.T) {
	t.Parallel()

	slots := DefaultHours.Slots()
	if len(slots) != 18 {
		t.Fatalf("expected 18 slots, got %d: %v", len(slots), slots)
	}
	if slots[0] != "09:00" || slots[1] != "09:30" || slots[17] != "17:30" {
		t.Errorf("unexpected slot grid: %v", slots)
	}
	if DefaultHours.Contains("18:00") {
		t.Error("18:00 is closing time, not a slot")
	}

	alt := Hours{Open: 10 * time.Hour, Close: 18 * time.Hour, Width: 30 * time.Minute}
	if got := alt.Slots(); len(got) != 16 || got[0] != "10:00" {
		t.Errorf("unexpected 10-18 grid: %v", got)
	}
}

func TestWindow_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date    string
		wantErr error
	}{
		{date: "2024-06-01"},
		{date: "2024-07-01"},
		{date: "2024-07-02", wantErr: ErrDateOutOfWindow},
		{date: "2024-05-31", wantErr: ErrDateOutOfWindow},
		{date: "01/06/2024", wantErr: ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			t.Parallel()
			_, err := DefaultWindow.Check(tt.date, testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check(%q) error = %v, want %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestFlow_ConfirmEnablement(t *testing.T) {
	t.Parallel()

	f := NewFlow(WithClock(fixedClock))
	view := f.Open(cardiologist)
	if !view.Open || view.CanConfirm || view.MinDate != "2024-06-01" || view.MaxDate != "2024-07-01" {
		t.Fatalf("unexpected opening view: %+v", view)
	}

	if err := f.SelectTime("09:30"); !errors.Is(err, ErrDateUnset) {
		t.Fatalf("time before date: got %v, want ErrDateUnset", err)
	}

	slots, err := f.SelectDate("2024-06-10")
	if err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if !slices.Equal(slots, DefaultHours.Slots()) {
		t.Fatalf("unexpected slots: %v", slots)
	}
	if f.CanConfirm() {
		t.Fatal("confirm must stay disabled without a time")
	}

	if err := f.SelectTime("09:30"); err != nil {
		t.Fatalf("SelectTime failed: %v", err)
	}
	if !f.CanConfirm() {
		t.Fatal("confirm must be enabled with date and time")
	}

	if _, err := f.SelectDate("2024-06-11"); err != nil {
		t.Fatalf("second SelectDate failed: %v", err)
	}
	d, _ := f.Draft()
	if d.Time != "" {
		t.Fatalf("new date must clear time, got %q", d.Time)
	}
	if f.CanConfirm() {
		t.Fatal("confirm must be disabled after the date changes")
	}
}

func TestFlow_ConfirmLifecycle(t *testing.T) {
	t.Parallel()

	f := NewFlow(WithClock(fixedClock))
	f.Open(cardiologist)
	if _, err := f.Confirm(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	_, _ = f.SelectDate("2024-06-10")
	_ = f.SelectTime("09:30")

	req, err := f.Confirm()
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if req != (Request{DoctorID: 1, Date: "2024-06-10", Time: "09:30"}) {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, err := f.Confirm(); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending for a double confirm, got %v", err)
	}
	if f.CanConfirm() {
		t.Fatal("confirm must be disabled while pending")
	}

	f.Failed()
	d, ok := f.Draft()
	if !ok || d.Date != "2024-06-10" || d.Time != "09:30" {
		t.Fatalf("failure must retain the draft, got %+v", d)
	}

	if _, err := f.Confirm(); err != nil {
		t.Fatalf("retry Confirm failed: %v", err)
	}
	f.Confirmed()
	if f.IsOpen() {
		t.Fatal("success must discard the draft")
	}
	if v := f.View(); v.Open || len(v.Slots) != 0 {
		t.Fatalf("unexpected view after success: %+v", v)
	}
}

func TestFlow_Errors(t *testing.T) {
	t.Parallel()

	f := NewFlow(WithClock(fixedClock), WithWindowDays(7))
	if _, err := f.SelectDate("2024-06-02"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	f.Open(cardiologist)
	if _, err := f.SelectDate("2024-06-20"); !errors.Is(err, ErrDateOutOfWindow) {
		t.Fatalf("expected ErrDateOutOfWindow with a 7-day window, got %v", err)
	}
	if _, err := f.SelectDate("2024-06-05"); err != nil {
		t.Fatalf("SelectDate failed: %v", err)
	}
	if err := f.SelectTime("18:00"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}

	f.Dismiss()
	if f.IsOpen() {
		t.Fatal("dismiss must discard the draft")
	}
}

func TestFlow_OpenResetsDraft(t *testing.T) {
	t.Parallel()

	f := NewFlow(WithClock(fixedClock))
	f.Open(cardiologist)
	_, _ = f.SelectDate("2024-06-10")
	_ = f.SelectTime("10:00")

	other := domain.Doctor{ID: 2, Name: "Dr. Priya Reddy"}
	v := f.Open(other)
	if v.Date != "" || v.Time != "" || v.Doctor.ID != 2 || len(v.Slots) != 0 {
		t.Fatalf("Open must start from an empty draft: %+v", v)
	}
}
