package live

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/directory"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/voice"
	json "github.com/goccy/go-json"
)

// errDetached is returned when a device capability is needed while no tab
// is attached.
var errDetached = errors.New("no client attached")

// outlet receives encoded frames for one client connection.
type outlet interface {
	enqueue(data []byte)
	close(reason string)
}

// bridge implements intake.Presenter by encoding frames for whichever
// connection is currently attached. Frames produced while detached are
// dropped; a reattaching client asks for a resync.
type bridge struct {
	mu     sync.Mutex
	out    outlet
	logger *slog.Logger
}

var _ intake.Presenter = (*bridge)(nil)

func newBridge(logger *slog.Logger) *bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &bridge{logger: logger}
}

// attach makes out the current outlet and returns the one it replaced.
func (b *bridge) attach(out outlet) outlet {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.out
	b.out = out
	return prev
}

// detach clears the outlet if it is still out.
func (b *bridge) detach(out outlet) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out != out {
		return false
	}
	b.out = nil
	return true
}

func (b *bridge) attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out != nil
}

func (b *bridge) send(typ string, data interface{}) {
	b.mu.Lock()
	out := b.out
	b.mu.Unlock()
	if out == nil {
		return
	}
	payload, err := json.Marshal(Frame{Type: typ, Data: data})
	if err != nil {
		b.logger.Error("Failed to encode frame", "type", typ, "error", err)
		return
	}
	out.enqueue(payload)
}

func (b *bridge) ShowScreen(s session.Screen) {
	b.send(FrameScreen, screenData{Screen: s})
}

func (b *bridge) SetNav(n session.NavState) {
	b.send(FrameNav, n)
}

func (b *bridge) MarkInvalid(form intake.Form, fields []string) {
	if fields == nil {
		fields = []string{}
	}
	b.send(FrameInvalid, invalidData{Form: form, Fields: fields})
}

func (b *bridge) Toast(kind intake.ToastKind, text string) {
	b.send(FrameToast, toastData{Kind: kind, Text: text})
}

func (b *bridge) AddMessage(m session.Message) {
	b.send(FrameMessage, m)
}

func (b *bridge) SetChatInput(text string) {
	b.send(FrameChatInput, textData{Text: text})
}

func (b *bridge) ApplyTranslations(lang domain.Language, translations map[string]string) {
	b.send(FrameTranslations, translationsData{Language: lang, Translations: translations})
}

func (b *bridge) ShowDoctors(specialist string, doctors []domain.Doctor) {
	b.send(FrameDoctors, doctorsData{Specialist: specialist, Doctors: doctors})
}

func (b *bridge) ShowCaretakers(caretakers []domain.Caretaker) {
	b.send(FrameCaretakers, caretakersData{Caretakers: caretakers})
}

func (b *bridge) ShowFamily(members, emergency []domain.FamilyMember, notice string) {
	b.send(FrameFamily, familyData{Members: members, Emergency: emergency, Notice: notice})
}

func (b *bridge) ShowBooking(v booking.View) {
	b.send(FrameBooking, v)
}

func (b *bridge) HideBooking() {
	b.send(FrameBookingHide, nil)
}

func (b *bridge) RenderMap(v directory.MapView) {
	b.send(FrameMap, v)
}

func (b *bridge) Speak(u voice.Utterance) {
	b.send(FrameSpeak, u)
}

func (b *bridge) CancelSpeech() {
	b.send(FrameSpeechCancel, nil)
}

// StartListening asks the attached tab to start recognition. The result
// arrives later as a transcript, listen_end or listen_error event.
func (b *bridge) StartListening(locale string) error {
	if !b.attached() {
		return errDetached
	}
	b.send(FrameListen, listenData{Locale: locale})
	return nil
}

func (b *bridge) SetListening(on bool) {
	b.send(FrameListening, listeningData{On: on})
}
