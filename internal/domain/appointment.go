package domain

import "time"

// AppointmentStatus tracks the lifecycle of a booking.
type AppointmentStatus string

const (
	AppointmentBooked    AppointmentStatus = "booked"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a confirmed consultation slot with a doctor.
type Appointment struct {
	Reference string            `json:"reference"`
	VisitorID string            `json:"-"`
	DoctorID  int               `json:"doctor_id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
