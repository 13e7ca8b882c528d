package voice

import (
	"errors"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

const (
	utteranceRate  = 1.02
	utterancePitch = 1.02
)

// Utterance is a single request to speak text.
type Utterance struct {
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Voice string  `json:"voice,omitempty"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
}

// Synthesizer is the text-to-speech capability.
type Synthesizer interface {
	Voices() []Voice
	Speak(u Utterance)
	Cancel()
}

// Speaker keeps the voice bound to the current language and guarantees that
// at most one utterance is in flight.
type Speaker struct {
	synth  Synthesizer
	locale string
	voice  Voice
	bound  bool
}

// NewSpeaker creates a speaker for lang. A nil synth yields a silent speaker.
func NewSpeaker(synth Synthesizer, lang domain.Language) *Speaker {
	s := &Speaker{synth: synth}
	s.SetLanguage(lang)
	return s
}

// Available reports whether speech output is supported.
func (s *Speaker) Available() bool {
	return s.synth != nil
}

// SetLanguage rebinds the voice for lang.
func (s *Speaker) SetLanguage(lang domain.Language) {
	s.locale = LocaleFor(lang)
	s.rebind()
}

// VoicesChanged recomputes the selection after the platform reports a new
// voice list.
func (s *Speaker) VoicesChanged() {
	s.rebind()
}

func (s *Speaker) rebind() {
	if s.synth == nil {
		return
	}
	s.voice, s.bound = Select(s.synth.Voices(), s.locale)
}

// Voice returns the bound voice, if any.
func (s *Speaker) Voice() (Voice, bool) {
	return s.voice, s.bound
}

// Speak cancels whatever is playing and speaks text.
func (s *Speaker) Speak(text string) {
	if s.synth == nil || strings.TrimSpace(text) == "" {
		return
	}
	u := Utterance{Text: text, Lang: s.locale, Rate: utteranceRate, Pitch: utterancePitch}
	if s.bound {
		u.Voice = s.voice.Name
		if s.voice.Lang != "" {
			u.Lang = s.voice.Lang
		}
	}
	s.synth.Cancel()
	s.synth.Speak(u)
}

var (
	// ErrUnsupported is returned when the client has no speech recognition.
	ErrUnsupported = errors.New("speech recognition not supported")
	// ErrListening is returned when a recognition session is already running.
	ErrListening = errors.New("speech recognition already active")
)

// Recognizer is the speech-to-text capability. It yields one final
// transcript per session, delivered back to the orchestrator as an event.
type Recognizer interface {
	Start(locale string) error
}

// Listener serialises recognition sessions.
type Listener struct {
	rec       Recognizer
	locale    string
	listening bool
}

// NewListener creates a listener for lang. A nil rec means unsupported.
func NewListener(rec Recognizer, lang domain.Language) *Listener {
	return &Listener{rec: rec, locale: LocaleFor(lang)}
}

// Available reports whether speech input is supported.
func (l *Listener) Available() bool {
	return l.rec != nil
}

// SetLanguage changes the recognition locale for subsequent sessions.
func (l *Listener) SetLanguage(lang domain.Language) {
	l.locale = LocaleFor(lang)
}

// Locale returns the current recognition locale.
func (l *Listener) Locale() string {
	return l.locale
}

// Listening reports whether a session is active.
func (l *Listener) Listening() bool {
	return l.listening
}

// Start begins a recognition session.
func (l *Listener) Start() error {
	if l.rec == nil {
		return ErrUnsupported
	}
	if l.listening {
		return ErrListening
	}
	if err := l.rec.Start(l.locale); err != nil {
		return err
	}
	l.listening = true
	return nil
}

// Ended marks the active session as finished, with or without a result.
func (l *Listener) Ended() {
	l.listening = false
}
