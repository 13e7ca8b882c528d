// Package api provides the HTTP handlers of the Swasthya Bandhu backend.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/classifier"
	"github.com/ashureev/swasthya-bandhu/internal/notify"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 64 << 10

// Options tune a Handler. Zero values fall back to defaults.
type Options struct {
	Classifier        *classifier.Classifier
	Notifier          notify.Notifier
	ChatLimiter       *RateLimiter
	BookingWindowDays int
	Hours             booking.Hours
	Now               func() time.Time
}

// Handler serves the intake backend routes.
type Handler struct {
	repo       store.Repository
	classifier *classifier.Classifier
	notifier   notify.Notifier
	limiter    *RateLimiter
	window     booking.Window
	hours      booking.Hours
	now        func() time.Time
}

// NewHandler creates a Handler over repo.
func NewHandler(repo store.Repository, opts Options) *Handler {
	h := &Handler{
		repo:       repo,
		classifier: opts.Classifier,
		notifier:   opts.Notifier,
		limiter:    opts.ChatLimiter,
		window:     booking.Window{Days: opts.BookingWindowDays},
		hours:      opts.Hours,
		now:        opts.Now,
	}
	if h.classifier == nil {
		h.classifier = classifier.New(classifier.DefaultRules, classifier.WithFallback(classifier.GeneralPhysician))
	}
	if h.notifier == nil {
		h.notifier = notify.Nop{}
	}
	if h.window.Days <= 0 {
		h.window = booking.DefaultWindow
	}
	if h.hours.Width <= 0 {
		h.hours = booking.DefaultHours
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// RegisterRoutes mounts the intake routes. The router must already carry
// the identity middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/set_language", h.SetLanguage)
	r.Get("/get_translations/{language}", h.GetTranslations)
	r.Post("/chat", h.Chat)
	r.Get("/get_doctors/{specialist}", h.GetDoctors)
	r.Get("/get_doctor_location/{id}", h.GetDoctorLocation)
	r.Get("/get_caretakers", h.GetCaretakers)
	r.Get("/get_family_members", h.GetFamilyMembers)
	r.Post("/add_family_member", h.AddFamilyMember)
	r.Post("/book_appointment", h.BookAppointment)
	r.Get("/get_appointments", h.GetAppointments)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// fail writes a business failure: HTTP 200 with {success:false, message}.
func fail(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": message})
}

// decode reads a bounded JSON body into v. It writes the error response
// itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
