// Package booking implements the date and time selection sub-flow for a
// single doctor.
package booking

import (
	"errors"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

var (
	ErrNotOpen         = errors.New("no booking in progress")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDateOutOfWindow = errors.New("date outside booking window")
	ErrDateUnset       = errors.New("select a date first")
	ErrUnknownSlot     = errors.New("unknown time slot")
	ErrIncomplete      = errors.New("date and time are required")
	ErrPending         = errors.New("booking confirmation already pending")
)

// Draft is the in-progress selection for one doctor.
type Draft struct {
	Doctor domain.Doctor
	Date   string
	Time   string
}

// Request is what gets sent to the backend on confirmation.
type Request struct {
	DoctorID int    `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// View is a snapshot for the presenter.
type View struct {
	Open       bool          `json:"open"`
	Doctor     domain.Doctor `json:"doctor"`
	MinDate    string        `json:"min_date"`
	MaxDate    string        `json:"max_date"`
	Date       string        `json:"date,omitempty"`
	Time       string        `json:"time,omitempty"`
	Slots      []string      `json:"slots"`
	CanConfirm bool          `json:"can_confirm"`
	Pending    bool          `json:"pending"`
}

// Flow owns at most one draft at a time.
type Flow struct {
	hours   Hours
	window  Window
	now     func() time.Time
	draft   *Draft
	slots   []string
	pending bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithWindowDays overrides the booking horizon.
func WithWindowDays(days int) Option {
	return func(f *Flow) {
		if days > 0 {
			f.window = Window{Days: days}
		}
	}
}

// WithHours overrides the slot grid.
func WithHours(h Hours) Option {
	return func(f *Flow) { f.hours = h }
}

// NewFlow creates a closed booking flow.
func NewFlow(opts ...Option) *Flow {
	f := &Flow{hours: DefaultHours, window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open starts a fresh draft for d, discarding any previous one.
func (f *Flow) Open(d domain.Doctor) View {
	f.draft = &Draft{Doctor: d}
	f.slots = nil
	f.pending = false
	return f.View()
}

// IsOpen reports whether a draft exists.
func (f *Flow) IsOpen() bool {
	return f.draft != nil
}

// Draft returns a copy of the current draft.
func (f *Flow) Draft() (Draft, bool) {
	if f.draft == nil {
		return Draft{}, false
	}
	return *f.draft, true
}

// SelectDate sets the date, clears the time and derives the slot set.
func (f *Flow) SelectDate(date string) ([]string, error) {
	if f.draft == nil {
		return nil, ErrNotOpen
	}
	if _, err := f.window.Check(date, f.now()); err != nil {
		return nil, err
	}
	f.draft.Date = date
	f.draft.Time = ""
	f.slots = f.hours.Slots()
	return f.Slots(), nil
}

// Slots returns the slots for the selected date.
func (f *Flow) Slots() []string {
	out := make([]string, len(f.slots))
	copy(out, f.slots)
	return out
}

// SelectTime sets the time; a date must already be chosen.
func (f *Flow) SelectTime(slot string) error {
	if f.draft == nil {
		return ErrNotOpen
	}
	if f.draft.Date == "" {
		return ErrDateUnset
	}
	for _, s := range f.slots {
		if s == slot {
			f.draft.Time = slot
			return nil
		}
	}
	return ErrUnknownSlot
}

// CanConfirm reports whether the confirm action is enabled.
func (f *Flow) CanConfirm() bool {
	return f.draft != nil && f.draft.Date != "" && f.draft.Time != "" && !f.pending
}

// Confirm marks the draft as pending and returns the booking request.
func (f *Flow) Confirm() (Request, error) {
	if f.draft == nil {
		return Request{}, ErrNotOpen
	}
	if f.pending {
		return Request{}, ErrPending
	}
	if f.draft.Date == "" || f.draft.Time == "" {
		return Request{}, ErrIncomplete
	}
	f.pending = true
	return Request{DoctorID: f.draft.Doctor.ID, Date: f.draft.Date, Time: f.draft.Time}, nil
}

// Confirmed discards the draft after a successful booking.
func (f *Flow) Confirmed() {
	f.draft = nil
	f.slots = nil
	f.pending = false
}

// Failed keeps the draft so the user can retry.
func (f *Flow) Failed() {
	f.pending = false
}

// Dismiss discards the draft.
func (f *Flow) Dismiss() {
	f.Confirmed()
}

// View snapshots the flow for rendering.
func (f *Flow) View() View {
	first, last := f.window.Bounds(f.now())
	v := View{
		MinDate: first.Format(DateLayout),
		MaxDate: last.Format(DateLayout),
		Slots:   f.Slots(),
	}
	if f.draft != nil {
		v.Open = true
		v.Doctor = f.draft.Doctor
		v.Date = f.draft.Date
		v.Time = f.draft.Time
		v.CanConfirm = f.CanConfirm()
		v.Pending = f.pending
	}
	return v
}
