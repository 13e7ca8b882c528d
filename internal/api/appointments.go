package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/identity"
	"github.com/ashureev/swasthya-bandhu/internal/notify"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/google/uuid"
)

const (
	msgSlotTaken   = "This slot is already booked. Please choose another time."
	msgInvalidDate = "Please select a valid date"
	msgInvalidSlot = "Please select a valid time slot"
	msgPastSlot    = "Please choose a future time slot"
)

// newReference returns a short human-readable booking reference.
func newReference() string {
	return "SB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// checkSlot validates date and slot against the booking window and
// business hours as of now.
func (h *Handler) checkSlot(date, slot string, now time.Time) string {
	day, err := h.window.Check(date, now)
	if errors.Is(err, booking.ErrDateOutOfWindow) {
		first, last := h.window.Bounds(now)
		return fmt.Sprintf("Please choose a date between %s and %s",
			first.Format(booking.DateLayout), last.Format(booking.DateLayout))
	}
	if err != nil {
		return msgInvalidDate
	}
	if !h.hours.Contains(slot) {
		return msgInvalidSlot
	}
	start, err := time.ParseInLocation("15:04", slot, now.Location())
	if err != nil {
		return msgInvalidSlot
	}
	at := day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
	if !at.After(now) {
		return msgPastSlot
	}
	return ""
}

// BookAppointment handles POST /book_appointment.
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req backend.BookingRequest
	if !decode(w, r, &req) {
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if req.DoctorID <= 0 || req.Date == "" || req.Time == "" {
		fail(w, "Please select a date and time")
		return
	}

	doctor, err := h.repo.GetDoctor(r.Context(), req.DoctorID)
	if errors.Is(err, store.ErrNotFound) {
		fail(w, msgDoctorNotFound)
		return
	}
	if err != nil {
		slog.Error("Failed to load doctor", "doctor_id", req.DoctorID, "error", err)
		fail(w, msgServerError)
		return
	}

	if msg := h.checkSlot(req.Date, req.Time, h.now()); msg != "" {
		fail(w, msg)
		return
	}

	appt := &domain.Appointment{
		Reference: newReference(),
		VisitorID: visitorID,
		DoctorID:  doctor.ID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    domain.AppointmentBooked,
		CreatedAt: h.now(),
	}
	if err := h.repo.CreateAppointment(r.Context(), appt); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			fail(w, msgSlotTaken)
			return
		}
		slog.Error("Failed to book appointment", "visitor_id", visitorID, "doctor_id", doctor.ID, "error", err)
		fail(w, msgServerError)
		return
	}

	slog.Info("Appointment booked",
		"visitor_id", visitorID,
		"reference", appt.Reference,
		"doctor_id", doctor.ID,
		"date", appt.Date,
		"time", appt.Time)

	h.notifyBooking(r, appt, doctor)

	JSON(w, http.StatusOK, backend.BookingResult{
		Result: backend.Result{
			Success: true,
			Message: fmt.Sprintf("Appointment booked with %s on %s at %s", doctor.Name, appt.Date, appt.Time),
		},
		Reference: appt.Reference,
	})
}

func (h *Handler) notifyBooking(r *http.Request, appt *domain.Appointment, doctor *domain.Doctor) {
	n := notify.Booking{
		Reference:  appt.Reference,
		DoctorName: doctor.Name,
		Specialist: doctor.Specialist,
		Hospital:   doctor.Hospital,
		Date:       appt.Date,
		Time:       appt.Time,
	}
	if user, err := h.repo.GetUser(r.Context(), appt.VisitorID); err == nil && user != nil && user.IsRegistered() {
		n.PatientName = user.Username
		n.PatientPhone = user.PhoneNumber
	}
	h.notifier.BookingConfirmed(n)
}

// GetAppointments handles GET /get_appointments.
func (h *Handler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	appts, err := h.repo.ListAppointments(r.Context(), visitorID)
	if err != nil {
		slog.Error("Failed to list appointments", "visitor_id", visitorID, "error", err)
		fail(w, msgServerError)
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	JSON(w, http.StatusOK, backend.AppointmentsResponse{
		Result:       backend.Result{Success: true},
		Appointments: appts,
	})
}
