package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/validation"
)

func (o *Orchestrator) openBooking(doctorID int) {
	d, ok := o.cache.Find(doctorID)
	if !ok {
		o.view.Toast(ToastError, "Doctor not found")
		return
	}
	o.view.ShowBooking(o.flow.Open(d))
}

func (o *Orchestrator) selectDate(date string) {
	if _, err := o.flow.SelectDate(date); err != nil {
		o.view.Toast(ToastError, o.bookingMessage(err))
		return
	}
	o.view.ShowBooking(o.flow.View())
}

func (o *Orchestrator) selectTime(slot string) {
	if err := o.flow.SelectTime(slot); err != nil {
		o.view.Toast(ToastError, o.bookingMessage(err))
		return
	}
	o.view.ShowBooking(o.flow.View())
}

func (o *Orchestrator) bookingMessage(err error) string {
	switch {
	case errors.Is(err, booking.ErrDateOutOfWindow):
		first, last := o.flow.View().MinDate, o.flow.View().MaxDate
		return fmt.Sprintf("Please choose a date between %s and %s", first, last)
	case errors.Is(err, booking.ErrInvalidDate):
		return "Please choose a valid date"
	case errors.Is(err, booking.ErrDateUnset):
		return "Please select a date first"
	case errors.Is(err, booking.ErrUnknownSlot):
		return "Please choose one of the available time slots"
	case errors.Is(err, booking.ErrIncomplete):
		return "Please select a date and time"
	case errors.Is(err, booking.ErrNotOpen):
		return "Please choose a doctor first"
	default:
		return "Booking failed. Please try again."
	}
}

func (o *Orchestrator) confirmBooking() {
	req, err := o.flow.Confirm()
	if errors.Is(err, booking.ErrPending) {
		return
	}
	if err != nil {
		o.view.Toast(ToastError, o.bookingMessage(err))
		return
	}
	o.view.ShowBooking(o.flow.View())

	launch(o, session.OpBooking, func(ctx context.Context) (backend.BookingResult, error) {
		return o.api.BookAppointment(ctx, backend.BookingRequest{DoctorID: req.DoctorID, Date: req.Date, Time: req.Time})
	}, func(res backend.BookingResult, err error) {
		current := o.awaiting(req)
		if err != nil || !res.Success {
			msg := "Booking failed. Please try again."
			if err != nil {
				o.log.Warn("booking request failed", "doctor_id", req.DoctorID, "error", err)
			} else if res.Message != "" {
				msg = res.Message
			}
			if current {
				o.flow.Failed()
				o.view.ShowBooking(o.flow.View())
			}
			o.view.Toast(ToastError, msg)
			return
		}

		o.log.Info("appointment booked", "doctor_id", req.DoctorID, "date", req.Date, "time", req.Time, "reference", res.Reference)
		if current {
			o.flow.Confirmed()
			o.view.HideBooking()
		}
		msg := res.Message
		if msg == "" {
			msg = "Appointment booked successfully!"
		}
		o.view.Toast(ToastSuccess, msg)
	})
}

// awaiting reports whether the open draft is the one req was issued for. The
// user may have dismissed it, or opened another doctor, while it was in flight.
func (o *Orchestrator) awaiting(req booking.Request) bool {
	d, ok := o.flow.Draft()
	return ok && o.flow.View().Pending && d.Doctor.ID == req.DoctorID && d.Date == req.Date && d.Time == req.Time
}

func (o *Orchestrator) loadFamily() {
	type listing struct {
		members []domain.FamilyMember
		result  backend.Result
	}
	launch(o, session.OpFamily, func(ctx context.Context) (listing, error) {
		members, res, err := o.api.FamilyMembers(ctx)
		return listing{members: members, result: res}, err
	}, func(l listing, err error) {
		switch {
		case err != nil:
			o.log.Warn("fetching family members failed", "error", err)
			o.familyNote = "Failed to load family members"
			o.family = nil
		case !l.result.Success:
			o.familyNote = "Please register first"
			o.family = nil
		default:
			o.familyNote = ""
			o.family = l.members
			if o.family == nil {
				o.family = []domain.FamilyMember{}
			}
		}
		o.view.ShowFamily(o.family, domain.EmergencyContacts(o.family), o.familyNote)
	})
}

func (o *Orchestrator) addFamilyMember(ev Event) {
	res := validation.Validate(validation.FamilyFields(ev.Name, ev.PhoneNumber, ev.Relationship))
	o.view.MarkInvalid(FormFamily, res.Invalid)
	if !res.OK {
		o.view.Toast(ToastError, "Please fill all required fields correctly")
		return
	}
	req := backend.FamilyMemberRequest{
		Name:               strings.TrimSpace(ev.Name),
		PhoneNumber:        strings.TrimSpace(ev.PhoneNumber),
		Relationship:       strings.TrimSpace(ev.Relationship),
		IsEmergencyContact: ev.IsEmergencyContact,
	}

	launch(o, session.OpFamilyAdd, func(ctx context.Context) (backend.Result, error) {
		return o.api.AddFamilyMember(ctx, req)
	}, func(r backend.Result, err error) {
		if err != nil {
			o.log.Warn("adding family member failed", "error", err)
			o.view.Toast(ToastError, "Failed to add family member")
			return
		}
		if !r.Success {
			o.view.Toast(ToastError, r.Message)
			return
		}
		o.view.Toast(ToastSuccess, r.Message)
		o.loadFamily()
	})
}
