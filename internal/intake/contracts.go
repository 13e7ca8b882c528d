// Package intake drives one visit: screens, registration, language, the
// symptom chat and triage, the doctor directory and booking. All state is
// owned by a single goroutine supplied by a Scheduler.
package intake

import (
	"context"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/directory"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/voice"
)

// ToastKind selects the style of a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Form names a validated form.
type Form string

const (
	FormRegister Form = "register"
	FormFamily   Form = "family"
)

// Presenter renders orchestrator output. Implementations must not block.
type Presenter interface {
	session.View

	MarkInvalid(form Form, fields []string)
	Toast(kind ToastKind, text string)
	AddMessage(m session.Message)
	SetChatInput(text string)
	ApplyTranslations(lang domain.Language, translations map[string]string)

	ShowDoctors(specialist string, doctors []domain.Doctor)
	ShowCaretakers(caretakers []domain.Caretaker)
	ShowFamily(members, emergency []domain.FamilyMember, notice string)
	ShowBooking(v booking.View)
	HideBooking()
	RenderMap(v directory.MapView)

	// Speech capabilities of the client device.
	Speak(u voice.Utterance)
	CancelSpeech()
	StartListening(locale string) error
	SetListening(on bool)
}

// Backend is the intake API as seen by the orchestrator. *backend.Client
// implements it.
type Backend interface {
	SetLanguage(ctx context.Context, lang domain.Language) error
	Translations(ctx context.Context, lang domain.Language) (map[string]string, error)
	Register(ctx context.Context, username, phone string) (backend.Result, error)
	Chat(ctx context.Context, message string) (backend.ChatReply, error)
	Doctors(ctx context.Context, specialist string) ([]domain.Doctor, error)
	Doctor(ctx context.Context, id int) (*domain.Doctor, error)
	Caretakers(ctx context.Context) ([]domain.Caretaker, error)
	FamilyMembers(ctx context.Context) ([]domain.FamilyMember, backend.Result, error)
	AddFamilyMember(ctx context.Context, m backend.FamilyMemberRequest) (backend.Result, error)
	BookAppointment(ctx context.Context, b backend.BookingRequest) (backend.BookingResult, error)
}

// TranscriptSink receives every chat message of a visit.
type TranscriptSink interface {
	Log(visitorID, sessionID string, m session.Message)
}

var _ Backend = (*backend.Client)(nil)

// deviceSynth adapts the presenter's speech output to voice.Synthesizer.
type deviceSynth struct {
	view   Presenter
	voices []voice.Voice
}

func (d *deviceSynth) Voices() []voice.Voice  { return d.voices }
func (d *deviceSynth) Speak(u voice.Utterance) { d.view.Speak(u) }
func (d *deviceSynth) Cancel()                 { d.view.CancelSpeech() }

// deviceRecognizer adapts the presenter's speech input to voice.Recognizer.
type deviceRecognizer struct {
	view Presenter
}

func (d deviceRecognizer) Start(locale string) error { return d.view.StartListening(locale) }
