package voice

import (
	"errors"
	"testing"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

func TestLocaleFor(t *testing.T) {
	t.Parallel()

	tests := map[domain.Language]string{
		domain.English:   "en-IN",
		domain.Hindi:     "hi-IN",
		domain.Telugu:    "te-IN",
		domain.Kannada:   "kn-IN",
		domain.Malayalam: "ml-IN",
		domain.Tamil:     "ta-IN",
		"klingon":        "en-IN",
	}
	for lang, want := range tests {
		if got := LocaleFor(lang); got != want {
			t.Errorf("LocaleFor(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	hindiPlain := Voice{Name: "Lekha", Lang: "hi-IN"}
	hindiNeural := Voice{Name: "Microsoft Swara Online (Natural) Neural", Lang: "hi-IN"}
	usFemale := Voice{Name: "Google US English Female", Lang: "en-US"}
	frPlain := Voice{Name: "Thomas", Lang: "fr-FR"}

	tests := []struct {
		name   string
		voices []Voice
		locale string
		want   Voice
		wantOK bool
	}{
		{name: "locale and quality", voices: []Voice{frPlain, hindiPlain, hindiNeural}, locale: "hi-IN", want: hindiNeural, wantOK: true},
		{name: "locale only", voices: []Voice{usFemale, hindiPlain}, locale: "hi-IN", want: hindiPlain, wantOK: true},
		{name: "quality any locale", voices: []Voice{frPlain, usFemale}, locale: "ta-IN", want: usFemale, wantOK: true},
		{name: "first voice", voices: []Voice{frPlain, {Name: "Alex", Lang: "en-GB"}}, locale: "ta-IN", want: frPlain, wantOK: true},
		{name: "none", voices: nil, locale: "ta-IN", wantOK: false},
		{name: "underscore tag", voices: []Voice{frPlain, {Name: "Tamil", Lang: "ta_IN"}}, locale: "ta-IN", want: Voice{Name: "Tamil", Lang: "ta_IN"}, wantOK: true},
		{name: "region must match", voices: []Voice{{Name: "Daniel", Lang: "en-GB"}, {Name: "Rishi", Lang: "en-IN"}}, locale: "en-IN", want: Voice{Name: "Rishi", Lang: "en-IN"}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Select(tt.voices, tt.locale)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Select() = (%+v, %v), want (%+v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

type fakeSynth struct {
	voices   []Voice
	spoken   []Utterance
	inFlight int
	maxInFly int
}

func (f *fakeSynth) Voices() []Voice { return f.voices }

func (f *fakeSynth) Speak(u Utterance) {
	f.spoken = append(f.spoken, u)
	f.inFlight++
	if f.inFlight > f.maxInFly {
		f.maxInFly = f.inFlight
	}
}

func (f *fakeSynth) Cancel() { f.inFlight = 0 }

func TestSpeaker_OneUtteranceInFlight(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{voices: []Voice{{Name: "Veena", Lang: "en-IN"}}}
	s := NewSpeaker(synth, domain.English)

	s.Speak("first")
	s.Speak("second")
	s.Speak("third")

	if synth.maxInFly != 1 {
		t.Fatalf("expected at most one utterance in flight, saw %d", synth.maxInFly)
	}
	if len(synth.spoken) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(synth.spoken))
	}
	last := synth.spoken[2]
	if last.Voice != "Veena" || last.Lang != "en-IN" || last.Rate != 1.02 || last.Pitch != 1.02 {
		t.Errorf("unexpected utterance: %+v", last)
	}
}

func TestSpeaker_RebindsOnLanguageAndVoiceChanges(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{}
	s := NewSpeaker(synth, domain.English)
	if _, ok := s.Voice(); ok {
		t.Fatal("expected no voice before the platform reports any")
	}

	synth.voices = []Voice{{Name: "Veena", Lang: "en-IN"}, {Name: "Lekha", Lang: "hi-IN"}}
	s.VoicesChanged()
	if v, _ := s.Voice(); v.Name != "Veena" {
		t.Fatalf("expected Veena after voiceschanged, got %q", v.Name)
	}

	s.SetLanguage(domain.Hindi)
	if v, _ := s.Voice(); v.Name != "Lekha" {
		t.Fatalf("expected Lekha after switching to hindi, got %q", v.Name)
	}

	s.Speak("namaste")
	if got := synth.spoken[0].Lang; got != "hi-IN" {
		t.Errorf("expected hi-IN utterance, got %q", got)
	}
}

func TestSpeaker_NoVoiceFallsBackToLocale(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{}
	s := NewSpeaker(synth, domain.Tamil)
	s.Speak("vanakkam")
	if got := synth.spoken[0]; got.Voice != "" || got.Lang != "ta-IN" {
		t.Errorf("expected platform default voice with ta-IN, got %+v", got)
	}
}

func TestSpeaker_Silent(t *testing.T) {
	t.Parallel()

	s := NewSpeaker(nil, domain.English)
	if s.Available() {
		t.Fatal("expected speaker without synthesizer to be unavailable")
	}
	s.Speak("hello")
}

type fakeRecognizer struct {
	started []string
	err     error
}

func (f *fakeRecognizer) Start(locale string) error {
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, locale)
	return nil
}

func TestListener_Exclusive(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{}
	l := NewListener(rec, domain.Kannada)

	if err := l.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := l.Start(); !errors.Is(err, ErrListening) {
		t.Fatalf("expected ErrListening, got %v", err)
	}
	l.Ended()

	l.SetLanguage(domain.Telugu)
	if err := l.Start(); err != nil {
		t.Fatalf("Start after Ended failed: %v", err)
	}
	if len(rec.started) != 2 || rec.started[0] != "kn-IN" || rec.started[1] != "te-IN" {
		t.Errorf("unexpected sessions: %v", rec.started)
	}
}

func TestListener_Unsupported(t *testing.T) {
	t.Parallel()

	l := NewListener(nil, domain.English)
	if err := l.Start(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestListener_StartErrorLeavesIdle(t *testing.T) {
	t.Parallel()

	l := NewListener(&fakeRecognizer{err: errors.New("mic blocked")}, domain.English)
	if err := l.Start(); err == nil {
		t.Fatal("expected error")
	}
	if l.Listening() {
		t.Fatal("listener must stay idle after a failed start")
	}
}
