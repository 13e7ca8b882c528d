package intake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/directory"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	"github.com/ashureev/swasthya-bandhu/internal/triage"
)

const (
	msgLocalMatch      = "Based on your symptoms, I recommend consulting a %s. Let me ask a few quick questions first."
	msgChatUnavailable = "Sorry, I couldn't process your message. Please try again."
	msgChatError       = "Sorry, there was an error. Please try again."
	msgDoctorsError    = "Sorry, I couldn't fetch doctors right now."
)

// submitChat routes a chat message: an answer while triage runs, otherwise a
// symptom description classified locally or by the backend.
func (o *Orchestrator) submitChat(text string) {
	if o.triage.Active() {
		o.answerTriage(text)
		return
	}

	msg := strings.TrimSpace(text)
	if msg == "" {
		return
	}
	o.say(session.RoleUser, msg)
	o.view.SetChatInput("")
	o.seq.Invalidate(session.OpTriageStart)

	if specialist, ok := o.classifier.Classify(msg); ok {
		o.log.Info("symptoms classified locally", "specialist", specialist)
		o.aiSay(fmt.Sprintf(msgLocalMatch, specialist))
		o.startTriage(specialist)
		return
	}

	launch(o, session.OpChat, func(ctx context.Context) (backend.ChatReply, error) {
		return o.api.Chat(ctx, msg)
	}, func(reply backend.ChatReply, err error) {
		if err != nil {
			o.log.Warn("chat request failed", "error", err)
			o.aiSay(msgChatError)
			return
		}
		if !reply.Success {
			o.aiSay(msgChatUnavailable)
			return
		}
		o.aiSay(reply.Response)
		if reply.Specialist != "" {
			o.scheduleTriage(reply.Specialist)
		}
	})
}

// scheduleTriage starts triage after the configured delay unless another
// message has been sent since.
func (o *Orchestrator) scheduleTriage(specialist string) {
	seq := o.seq.Next(session.OpTriageStart)
	o.sched.AfterFunc(o.opts.TriageDelay, func() {
		if !o.seq.Latest(session.OpTriageStart, seq) {
			return
		}
		o.startTriage(specialist)
	})
}

func (o *Orchestrator) startTriage(specialist string) {
	question, err := o.triage.Start(specialist)
	if err != nil {
		o.log.Debug("triage not started", "specialist", specialist, "error", err)
		return
	}
	// A triage and a pending doctor fetch never coexist.
	o.cache.Cancel()
	o.seq.Invalidate(session.OpChat)
	o.aiSay(question)
}

func (o *Orchestrator) answerTriage(text string) {
	step, err := o.triage.Submit(text)
	if errors.Is(err, triage.ErrEmptyAnswer) {
		return
	}
	if err != nil {
		o.log.Error("triage answer rejected", "error", err)
		return
	}
	o.say(session.RoleUser, strings.TrimSpace(text))
	o.view.SetChatInput("")

	if step.Outcome == nil {
		o.aiSay(step.Question)
		return
	}
	o.log.Info("triage completed",
		"specialist", step.Outcome.Specialist,
		"duration", step.Outcome.Answers[triage.KeyDuration],
		"severity", step.Outcome.Answers[triage.KeySeverity],
	)
	o.aiSay(triage.ClosingMessage)
	o.fetchDoctors(step.Outcome.Specialist)
}

// fetchDoctors replaces the directory with the doctors for specialist and
// shows them. Failures leave the previous list in place.
func (o *Orchestrator) fetchDoctors(specialist string) {
	ticket := o.cache.Begin(specialist)
	o.sched.Go(func() {
		doctors, err := o.api.Doctors(o.ctx, specialist)
		o.sched.Post(func() {
			if err != nil {
				if o.cache.Fail(ticket) {
					o.log.Warn("fetching doctors failed", "specialist", specialist, "error", err)
					o.aiSay(msgDoctorsError)
				}
				return
			}
			if !o.cache.Resolve(ticket, doctors) {
				o.log.Debug("discarding stale doctor list", "specialist", specialist)
				return
			}
			o.nav.JumpTo(session.Doctors)
		})
	})
}

func (o *Orchestrator) renderDoctors() {
	o.view.ShowDoctors(o.cache.Specialist(), o.cache.Doctors())
}

// viewMap shows the map for every cached doctor, centred on doctorID when it
// is non-zero. Doctors missing from the cache are looked up by id.
func (o *Orchestrator) viewMap(doctorID int) {
	if doctorID == 0 {
		o.mapFocus = nil
		o.nav.JumpTo(session.Map)
		return
	}
	if d, ok := o.cache.Find(doctorID); ok {
		o.mapFocus = &d
		o.nav.JumpTo(session.Map)
		return
	}
	launch(o, session.OpLocate, func(ctx context.Context) (*domain.Doctor, error) {
		return o.api.Doctor(ctx, doctorID)
	}, func(d *domain.Doctor, err error) {
		if err != nil {
			o.log.Warn("doctor lookup failed", "doctor_id", doctorID, "error", err)
			o.view.Toast(ToastError, "Doctor not found")
			return
		}
		o.mapFocus = d
		o.nav.JumpTo(session.Map)
	})
}

func (o *Orchestrator) renderMap() {
	doctors := o.cache.Doctors()
	focus := o.mapFocus
	o.mapFocus = nil
	if focus != nil && !slices.ContainsFunc(doctors, func(d domain.Doctor) bool { return d.ID == focus.ID }) {
		doctors = append(doctors, *focus)
	}
	view := directory.NewMapView(doctors, focus)
	o.lastMap = &view
	o.view.RenderMap(view)
}

func (o *Orchestrator) loadCaretakers() {
	launch(o, session.OpCaretakers, func(ctx context.Context) ([]domain.Caretaker, error) {
		return o.api.Caretakers(ctx)
	}, func(list []domain.Caretaker, err error) {
		if err != nil {
			o.log.Warn("fetching caretakers failed", "error", err)
			o.view.ShowCaretakers(nil)
			o.view.Toast(ToastError, "Failed to load caretakers")
			return
		}
		if list == nil {
			list = []domain.Caretaker{}
		}
		o.caretakers = list
		o.view.ShowCaretakers(list)
	})
}
