// Package notify delivers booking notifications to care coordinators.
package notify

import (
	"fmt"
	"strings"
)

// Booking is a confirmed appointment as shown to coordinators.
type Booking struct {
	Reference    string
	PatientName  string
	PatientPhone string
	DoctorName   string
	Specialist   string
	Hospital     string
	Date         string
	Time         string
}

// Notifier is told about confirmed bookings. BookingConfirmed must not block.
type Notifier interface {
	BookingConfirmed(b Booking)
}

// Nop discards notifications.
type Nop struct{}

// BookingConfirmed does nothing.
func (Nop) BookingConfirmed(Booking) {}

// FormatBooking renders b as a plain-text message.
func FormatBooking(b Booking) string {
	patient := b.PatientName
	if patient == "" {
		patient = "Unregistered visitor"
	}
	if b.PatientPhone != "" {
		patient += " (" + b.PatientPhone + ")"
	}

	var sb strings.Builder
	sb.WriteString("New appointment booked\n")
	fmt.Fprintf(&sb, "Reference: %s\n", b.Reference)
	fmt.Fprintf(&sb, "Patient: %s\n", patient)
	fmt.Fprintf(&sb, "Doctor: %s", b.DoctorName)
	if b.Specialist != "" {
		fmt.Fprintf(&sb, ", %s", b.Specialist)
	}
	sb.WriteString("\n")
	if b.Hospital != "" {
		fmt.Fprintf(&sb, "Hospital: %s\n", b.Hospital)
	}
	fmt.Fprintf(&sb, "When: %s at %s", b.Date, b.Time)
	return sb.String()
}
