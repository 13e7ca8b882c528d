package intake

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/booking"
	"github.com/ashureev/swasthya-bandhu/internal/classifier"
	"github.com/ashureev/swasthya-bandhu/internal/directory"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/triage"
	"github.com/ashureev/swasthya-bandhu/internal/validation"
	"github.com/ashureev/swasthya-bandhu/internal/voice"
)

const (
	defaultSplashDelay  = 3 * time.Second
	defaultHandoffDelay = 1 * time.Second
	defaultTriageDelay  = 2 * time.Second
)

// Options configures an Orchestrator. Zero values select the defaults.
type Options struct {
	SessionID string
	VisitorID string

	SplashDelay  time.Duration // splash auto-advance
	HandoffDelay time.Duration // register→language and language→chat
	TriageDelay  time.Duration // backend specialist → first question

	BookingWindowDays int
	Now               func() time.Time

	Classifier     *classifier.Classifier
	TranscriptSize int
	Transcript     TranscriptSink
	Logger         *slog.Logger
}

// Orchestrator owns the state of one visit. Every method that touches state
// runs on the scheduler goroutine.
type Orchestrator struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	sched  Scheduler
	view   Presenter
	api    Backend
	log    *slog.Logger

	sess       *session.Context
	nav        *session.Navigator
	seq        *session.Sequencer
	transcript *session.Transcript
	classifier *classifier.Classifier
	triage     *triage.Engine
	cache      *directory.Cache
	flow       *booking.Flow
	synth      *deviceSynth
	speaker    *voice.Speaker
	listener   *voice.Listener

	caretakers []domain.Caretaker
	family     []domain.FamilyMember
	familyNote string
	mapFocus   *domain.Doctor
	lastMap    *directory.MapView
}

// New wires an orchestrator. Nothing is rendered until Start.
func New(ctx context.Context, sched Scheduler, view Presenter, api Backend, opts Options) *Orchestrator {
	if opts.SplashDelay <= 0 {
		opts.SplashDelay = defaultSplashDelay
	}
	if opts.HandoffDelay <= 0 {
		opts.HandoffDelay = defaultHandoffDelay
	}
	if opts.TriageDelay <= 0 {
		opts.TriageDelay = defaultTriageDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Classifier == nil {
		opts.Classifier = classifier.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	o := &Orchestrator{
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		sched:      sched,
		view:       view,
		api:        api,
		log:        logger.With("visitor_id", opts.VisitorID, "session_id", opts.SessionID),
		sess:       session.NewContext(opts.SessionID, opts.VisitorID),
		seq:        session.NewSequencer(),
		transcript: session.NewTranscript(opts.TranscriptSize),
		classifier: opts.Classifier,
		triage:     triage.New(),
		cache:      directory.New(),
		flow:       booking.NewFlow(booking.WithClock(opts.Now), booking.WithWindowDays(opts.BookingWindowDays)),
		synth:      &deviceSynth{view: view},
	}
	o.speaker = voice.NewSpeaker(nil, o.sess.Language)
	o.listener = voice.NewListener(nil, o.sess.Language)

	o.nav = session.NewNavigator(o.sess, view)
	o.nav.OnEnter(session.Doctors, o.renderDoctors)
	o.nav.OnEnter(session.Map, o.renderMap)
	o.nav.OnEnter(session.Caretaker, o.loadCaretakers)
	o.nav.OnEnter(session.Family, o.loadFamily)
	o.nav.OnEnter(session.Emergency, o.loadFamily)
	return o
}

// Start shows the splash screen and arms its auto-advance.
func (o *Orchestrator) Start() {
	o.sched.Post(func() {
		o.nav.Show(session.Splash)
		o.sched.AfterFunc(o.opts.SplashDelay, func() {
			if o.nav.Current() == session.Splash {
				o.nav.Show(session.Register)
			}
		})
	})
}

// Dispatch queues a client event.
func (o *Orchestrator) Dispatch(ev Event) {
	o.sched.Post(func() { o.handle(ev) })
}

// Close cancels outstanding backend calls.
func (o *Orchestrator) Close() {
	o.cancel()
}

// SessionID returns the id of the visit.
func (o *Orchestrator) SessionID() string {
	return o.opts.SessionID
}

func (o *Orchestrator) handle(ev Event) {
	o.log.Debug("intake event", "type", ev.Type, "screen", o.nav.Current())

	switch ev.Type {
	case EventHello:
		caps := Capabilities{}
		if ev.Capabilities != nil {
			caps = *ev.Capabilities
		}
		o.configureSpeech(caps, ev.Voices)
		o.resync()
	case EventVoices:
		o.synth.voices = ev.Voices
		o.speaker.VoicesChanged()
	case EventNext:
		o.next()
	case EventBack:
		o.nav.Retreat()
	case EventRegisterInput:
		o.checkRegister(ev.Username, ev.PhoneNumber)
	case EventRegisterSubmit:
		o.submitRegister(ev.Username, ev.PhoneNumber)
	case EventSelectLanguage:
		o.selectLanguage(ev.Language)
	case EventChatSubmit:
		o.submitChat(ev.Text)
	case EventVoiceStart:
		o.startListening()
	case EventTranscript:
		o.stopListening()
		o.view.SetChatInput(ev.Text)
		o.submitChat(ev.Text)
	case EventListenEnd:
		o.stopListening()
	case EventListenError:
		o.stopListening()
		o.log.Warn("speech recognition failed", "error", ev.Error)
		o.view.Toast(ToastError, "Voice recognition failed")
	case EventSOS:
		o.nav.JumpTo(session.Emergency)
	case EventFamilyView:
		o.nav.JumpTo(session.Family)
	case EventViewMap:
		o.viewMap(ev.DoctorID)
	case EventFindCaretakers:
		o.nav.JumpTo(session.Caretaker)
	case EventBookOpen:
		o.openBooking(ev.DoctorID)
	case EventBookDate:
		o.selectDate(ev.Date)
	case EventBookTime:
		o.selectTime(ev.Time)
	case EventBookConfirm:
		o.confirmBooking()
	case EventBookDismiss:
		o.flow.Dismiss()
		o.view.HideBooking()
	case EventFamilyInput:
		o.view.MarkInvalid(FormFamily, validation.Validate(validation.FamilyFields(ev.Name, ev.PhoneNumber, ev.Relationship)).Invalid)
	case EventFamilyAdd:
		o.addFamilyMember(ev)
	default:
		o.log.Warn("unknown intake event", "type", ev.Type)
	}
}

// launch runs call off the loop and applies done on the loop, unless a newer
// request of the same op was issued in the meantime.
func launch[T any](o *Orchestrator, op session.Op, call func(context.Context) (T, error), done func(T, error)) {
	seq := o.seq.Next(op)
	o.sched.Go(func() {
		v, err := call(o.ctx)
		o.sched.Post(func() {
			if !o.seq.Latest(op, seq) {
				o.log.Debug("discarding stale response", "op", op, "seq", seq)
				return
			}
			done(v, err)
		})
	})
}

func (o *Orchestrator) next() {
	cur := o.nav.Current()
	err := o.nav.Advance()
	if err == nil {
		return
	}
	if !errors.Is(err, session.ErrGateClosed) {
		o.log.Error("advance failed", "screen", cur, "error", err)
		return
	}
	switch cur {
	case session.Language:
		o.view.Toast(ToastError, "Please select a language")
	default:
		o.view.Toast(ToastError, o.sess.T("error_fill_fields", "Please fill all required fields"))
	}
}

// handoff moves from one screen to the next after delay, unless the user
// has already navigated away.
func (o *Orchestrator) handoff(from, to session.Screen) {
	o.sched.AfterFunc(o.opts.HandoffDelay, func() {
		if o.nav.Current() == from {
			o.nav.Show(to)
		}
	})
}

func (o *Orchestrator) checkRegister(username, phone string) bool {
	res := validation.Validate(validation.RegisterFields(username, phone))
	o.sess.SetFlag(session.Register, res.OK)
	o.view.MarkInvalid(FormRegister, res.Invalid)
	o.nav.Refresh()
	return res.OK
}

func (o *Orchestrator) submitRegister(username, phone string) {
	if !o.checkRegister(username, phone) {
		o.view.Toast(ToastError, o.sess.T("error_fill_fields", "Please fill all required fields correctly"))
		return
	}
	username, phone = strings.TrimSpace(username), strings.TrimSpace(phone)

	launch(o, session.OpRegister, func(ctx context.Context) (backend.Result, error) {
		return o.api.Register(ctx, username, phone)
	}, func(res backend.Result, err error) {
		if err != nil {
			o.log.Warn("registration request failed", "error", err)
			o.view.Toast(ToastError, "Registration failed. Please try again.")
			return
		}
		if !res.Success {
			o.view.Toast(ToastError, res.Message)
			return
		}
		o.sess.SetFlag(session.Register, true)
		o.nav.Refresh()
		o.view.Toast(ToastSuccess, o.sess.T("success_registered", res.Message))
		o.handoff(session.Register, session.Language)
	})
}

func (o *Orchestrator) selectLanguage(raw domain.Language) {
	lang, ok := domain.ParseLanguage(string(raw))
	if !ok {
		o.view.Toast(ToastError, "Please select a language")
		return
	}
	o.sess.SetFlag(session.Language, true)
	o.nav.Refresh()
	o.applyLanguage(lang)
	o.handoff(session.Language, session.Chat)
}

// applyLanguage switches the visit to lang. The language is never reverted:
// failures only surface a notice and leave the previous translations.
func (o *Orchestrator) applyLanguage(lang domain.Language) {
	o.sess.Language = lang
	o.speaker.SetLanguage(lang)
	o.listener.SetLanguage(lang)

	launch(o, session.OpSetLanguage, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.api.SetLanguage(ctx, lang)
	}, func(_ struct{}, err error) {
		if err != nil {
			o.log.Warn("persisting language failed", "language", lang, "error", err)
			o.view.Toast(ToastInfo, "Your language preference could not be saved")
		}
	})

	launch(o, session.OpTranslations, func(ctx context.Context) (map[string]string, error) {
		return o.api.Translations(ctx, lang)
	}, func(tr map[string]string, err error) {
		if err != nil {
			o.log.Warn("fetching translations failed", "language", lang, "error", err)
			o.view.Toast(ToastError, "Failed to set language")
			return
		}
		o.sess.SetTranslations(tr)
		o.view.ApplyTranslations(lang, o.sess.Translations())
		o.view.Toast(ToastSuccess, o.sess.T("success_language", "Language selected successfully!"))
	})
}

func (o *Orchestrator) configureSpeech(caps Capabilities, voices []voice.Voice) {
	var synth voice.Synthesizer
	if caps.SpeechSynthesis {
		o.synth.voices = voices
		synth = o.synth
	}
	var rec voice.Recognizer
	if caps.SpeechRecognition {
		rec = deviceRecognizer{view: o.view}
	}
	o.speaker = voice.NewSpeaker(synth, o.sess.Language)
	o.listener = voice.NewListener(rec, o.sess.Language)
}

func (o *Orchestrator) startListening() {
	err := o.listener.Start()
	switch {
	case err == nil:
		o.view.SetListening(true)
	case errors.Is(err, voice.ErrUnsupported):
		o.view.Toast(ToastInfo, "Voice input is not supported on this device")
	case errors.Is(err, voice.ErrListening):
		o.view.Toast(ToastInfo, "Already listening")
	default:
		o.log.Warn("starting speech recognition failed", "error", err)
		o.view.Toast(ToastError, "Voice recognition failed")
	}
}

func (o *Orchestrator) stopListening() {
	o.listener.Ended()
	o.view.SetListening(false)
}

// resync re-renders everything for a freshly attached client.
func (o *Orchestrator) resync() {
	o.view.ApplyTranslations(o.sess.Language, o.sess.Translations())
	for _, m := range o.transcript.Messages() {
		o.view.AddMessage(m)
	}
	if specialist := o.cache.Specialist(); specialist != "" {
		o.view.ShowDoctors(specialist, o.cache.Doctors())
	}
	if o.caretakers != nil {
		o.view.ShowCaretakers(o.caretakers)
	}
	if o.family != nil || o.familyNote != "" {
		o.view.ShowFamily(o.family, domain.EmergencyContacts(o.family), o.familyNote)
	}
	if o.lastMap != nil {
		o.view.RenderMap(*o.lastMap)
	}
	if o.flow.IsOpen() {
		o.view.ShowBooking(o.flow.View())
	}
	o.view.SetListening(o.listener.Listening())
	o.view.ShowScreen(o.nav.Current())
	o.nav.Refresh()
}

func (o *Orchestrator) say(role session.Role, text string) {
	m := session.Message{Role: role, Text: text, At: o.opts.Now()}
	o.transcript.Append(m)
	o.view.AddMessage(m)
	if o.opts.Transcript != nil {
		o.opts.Transcript.Log(o.opts.VisitorID, o.opts.SessionID, m)
	}
}

func (o *Orchestrator) aiSay(text string) {
	o.say(session.RoleAI, text)
	o.speaker.Speak(text)
}
