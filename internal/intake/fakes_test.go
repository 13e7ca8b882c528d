package intake

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/directory"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/voice"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

// manualScheduler runs posted work inline and keeps background calls and
// timers queued until the test releases them.
type manualScheduler struct {
	pending []func()
	timers  []func()
}

func (s *manualScheduler) Post(fn func())                       { fn() }
func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) { s.timers = append(s.timers, fn) }
func (s *manualScheduler) Go(fn func())                         { s.pending = append(s.pending, fn) }

// drain runs queued background calls in issue order, including any they queue.
func (s *manualScheduler) drain() {
	for len(s.pending) > 0 {
		fn := s.pending[0]
		s.pending = s.pending[1:]
		fn()
	}
}

// runAt runs the i-th queued background call out of order.
func (s *manualScheduler) runAt(i int) {
	fn := s.pending[i]
	s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
	fn()
}

func (s *manualScheduler) fireTimers() {
	timers := s.timers
	s.timers = nil
	for _, fn := range timers {
		fn()
	}
}

type toast struct {
	kind ToastKind
	text string
}

type fakePresenter struct {
	screens      []session.Screen
	nav          session.NavState
	invalid      map[Form][]string
	toasts       []toast
	messages     []session.Message
	chatInput    string
	language     domain.Language
	translations map[string]string

	specialist    string
	doctors       []domain.Doctor
	caretakers    []domain.Caretaker
	family        []domain.FamilyMember
	emergency     []domain.FamilyMember
	familyNote    string
	booking       booking.View
	bookingHidden bool
	maps          []directory.MapView

	spoken    []voice.Utterance
	cancels   int
	locales   []string
	listenErr error
	listening bool
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{invalid: make(map[Form][]string)}
}

func (p *fakePresenter) ShowScreen(s session.Screen)            { p.screens = append(p.screens, s) }
func (p *fakePresenter) SetNav(n session.NavState)              { p.nav = n }
func (p *fakePresenter) MarkInvalid(form Form, fields []string) { p.invalid[form] = fields }
func (p *fakePresenter) Toast(kind ToastKind, text string)      { p.toasts = append(p.toasts, toast{kind, text}) }
func (p *fakePresenter) AddMessage(m session.Message)           { p.messages = append(p.messages, m) }
func (p *fakePresenter) SetChatInput(text string)               { p.chatInput = text }
func (p *fakePresenter) ApplyTranslations(lang domain.Language, t map[string]string) {
	p.language = lang
	p.translations = t
}
func (p *fakePresenter) ShowDoctors(specialist string, doctors []domain.Doctor) {
	p.specialist = specialist
	p.doctors = doctors
}
func (p *fakePresenter) ShowCaretakers(c []domain.Caretaker) { p.caretakers = c }
func (p *fakePresenter) ShowFamily(members, emergency []domain.FamilyMember, notice string) {
	p.family, p.emergency, p.familyNote = members, emergency, notice
}
func (p *fakePresenter) ShowBooking(v booking.View) {
	p.booking = v
	p.bookingHidden = false
}
func (p *fakePresenter) HideBooking()                  { p.bookingHidden = true }
func (p *fakePresenter) RenderMap(v directory.MapView) { p.maps = append(p.maps, v) }
func (p *fakePresenter) Speak(u voice.Utterance)       { p.spoken = append(p.spoken, u) }
func (p *fakePresenter) CancelSpeech()                 { p.cancels++ }
func (p *fakePresenter) StartListening(locale string) error {
	if p.listenErr != nil {
		return p.listenErr
	}
	p.locales = append(p.locales, locale)
	return nil
}
func (p *fakePresenter) SetListening(on bool) { p.listening = on }

func (p *fakePresenter) screen() session.Screen {
	if len(p.screens) == 0 {
		return -1
	}
	return p.screens[len(p.screens)-1]
}

func (p *fakePresenter) lastToast() toast {
	if len(p.toasts) == 0 {
		return toast{}
	}
	return p.toasts[len(p.toasts)-1]
}

func (p *fakePresenter) lastMessage() session.Message {
	if len(p.messages) == 0 {
		return session.Message{}
	}
	return p.messages[len(p.messages)-1]
}

var errUnavailable = errors.New("backend unavailable")

type fakeBackend struct {
	mu sync.Mutex

	languages       []domain.Language
	setLanguageErr  error
	translations    map[domain.Language]map[string]string
	translationsErr error

	registered  []string
	registerRes backend.Result
	registerErr error

	chats     []string
	chatReply backend.ChatReply
	chatErr   error

	doctorRequests []string
	doctors        map[string][]domain.Doctor
	doctorsErr     error
	located        map[int]domain.Doctor

	caretakers    []domain.Caretaker
	caretakersErr error

	family    []domain.FamilyMember
	familyRes backend.Result
	added     []backend.FamilyMemberRequest
	addRes    backend.Result

	bookings   []backend.BookingRequest
	bookingRes backend.BookingResult
	bookingErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		translations: map[domain.Language]map[string]string{},
		doctors:      map[string][]domain.Doctor{},
		located:      map[int]domain.Doctor{},
		registerRes:  backend.Result{Success: true, Message: "Registration successful"},
		familyRes:    backend.Result{Success: true},
		addRes:       backend.Result{Success: true, Message: "Family member added successfully"},
		bookingRes:   backend.BookingResult{Result: backend.Result{Success: true, Message: "Appointment booked successfully!"}, Reference: "ref-1"},
	}
}

func (b *fakeBackend) SetLanguage(_ context.Context, lang domain.Language) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.languages = append(b.languages, lang)
	return b.setLanguageErr
}

func (b *fakeBackend) Translations(_ context.Context, lang domain.Language) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.translationsErr != nil {
		return nil, b.translationsErr
	}
	return b.translations[lang], nil
}

func (b *fakeBackend) Register(_ context.Context, username, phone string) (backend.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = append(b.registered, username+":"+phone)
	return b.registerRes, b.registerErr
}

func (b *fakeBackend) Chat(_ context.Context, message string) (backend.ChatReply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats = append(b.chats, message)
	return b.chatReply, b.chatErr
}

func (b *fakeBackend) Doctors(_ context.Context, specialist string) ([]domain.Doctor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doctorRequests = append(b.doctorRequests, specialist)
	if b.doctorsErr != nil {
		return nil, b.doctorsErr
	}
	return b.doctors[specialist], nil
}

func (b *fakeBackend) Doctor(_ context.Context, id int) (*domain.Doctor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.located[id]
	if !ok {
		return nil, errUnavailable
	}
	return &d, nil
}

func (b *fakeBackend) Caretakers(context.Context) ([]domain.Caretaker, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caretakers, b.caretakersErr
}

func (b *fakeBackend) FamilyMembers(context.Context) ([]domain.FamilyMember, backend.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.family, b.familyRes, nil
}

func (b *fakeBackend) AddFamilyMember(_ context.Context, m backend.FamilyMemberRequest) (backend.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.added = append(b.added, m)
	if b.addRes.Success {
		b.family = append(b.family, domain.FamilyMember{Name: m.Name, PhoneNumber: m.PhoneNumber, Relationship: m.Relationship, IsEmergencyContact: m.IsEmergencyContact})
	}
	return b.addRes, nil
}

func (b *fakeBackend) BookAppointment(_ context.Context, req backend.BookingRequest) (backend.BookingResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookings = append(b.bookings, req)
	return b.bookingRes, b.bookingErr
}

type recordedLine struct {
	visitorID, sessionID string
	msg                  session.Message
}

type fakeSink struct {
	lines []recordedLine
}

func (s *fakeSink) Log(visitorID, sessionID string, m session.Message) {
	s.lines = append(s.lines, recordedLine{visitorID, sessionID, m})
}

type harness struct {
	o    *Orchestrator
	s    *manualScheduler
	view *fakePresenter
	api  *fakeBackend
	sink *fakeSink
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		s:    &manualScheduler{},
		view: newFakePresenter(),
		api:  newFakeBackend(),
		sink: &fakeSink{},
	}
	h.o = New(context.Background(), h.s, h.view, h.api, Options{
		SessionID:  "tab-1",
		VisitorID:  "anon_1",
		Now:        fixedNow,
		Transcript: h.sink,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(h.o.Close)
	return h
}

func (h *harness) send(ev Event) {
	h.o.Dispatch(ev)
}

func (h *harness) chat(text string) {
	h.send(Event{Type: EventChatSubmit, Text: text})
}
