// Package triage implements the fixed follow-up questionnaire that runs after
// a specialist has been identified.
package triage

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyAnswer is returned for blank answers; the stage does not advance.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrNotActive is returned when an answer arrives outside a triage.
	ErrNotActive = errors.New("triage is not active")
	// ErrActive is returned when a triage is started while one is running.
	ErrActive = errors.New("triage already active")
)

// State is the engine's coarse state.
type State int

const (
	StateInactive State = iota
	StateAsking
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateAsking:
		return "asking"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Answer keys, one per question.
const (
	KeyDuration = "duration"
	KeySeverity = "severity"
	KeyOther    = "other"
)

type question struct {
	key  string
	text string
}

var questions = [...]question{
	{key: KeyDuration, text: "How long have you had this issue? (hours/days/weeks)"},
	{key: KeySeverity, text: "On a scale of 1 to 10, how severe is it?"},
	{key: KeyOther, text: "Any other symptoms like fever, dizziness, or shortness of breath?"},
}

// ClosingMessage is emitted once the last answer is recorded.
const ClosingMessage = "Thanks. Let me find the best nearby doctors for you."

// QuestionCount is the number of follow-up questions.
const QuestionCount = len(questions)

// Question returns the text of the question at stage.
func Question(stage int) string {
	return questions[stage].text
}

// Outcome is produced when the last question is answered.
type Outcome struct {
	Specialist string
	Answers    map[string]string
}

// Step is the result of a successful Submit: either the next question or,
// when Outcome is non-nil, the completion of the triage.
type Step struct {
	Question string
	Outcome  *Outcome
}

// Engine holds the state of one triage at a time.
type Engine struct {
	state      State
	stage      int
	specialist string
	answers    map[string]string
	completed  int
}

// New returns an inactive engine.
func New() *Engine {
	return &Engine{}
}

// Start begins a triage for specialist and returns the first question.
func (e *Engine) Start(specialist string) (string, error) {
	if e.state == StateAsking {
		return "", ErrActive
	}
	e.state = StateAsking
	e.stage = 0
	e.specialist = specialist
	e.answers = make(map[string]string, QuestionCount)
	return questions[0].text, nil
}

// Submit records text for the current question.
func (e *Engine) Submit(text string) (Step, error) {
	if e.state != StateAsking {
		return Step{}, ErrNotActive
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return Step{}, ErrEmptyAnswer
	}

	e.answers[questions[e.stage].key] = answer
	e.stage++
	if e.stage < QuestionCount {
		return Step{Question: questions[e.stage].text}, nil
	}

	e.state = StateCompleted
	out := &Outcome{Specialist: e.specialist, Answers: e.answers}
	e.completed++
	e.reset()
	return Step{Outcome: out}, nil
}

func (e *Engine) reset() {
	e.state = StateInactive
	e.stage = 0
	e.specialist = ""
	e.answers = nil
}

// Active reports whether a question is outstanding.
func (e *Engine) Active() bool {
	return e.state == StateAsking
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Stage returns the index of the outstanding question.
func (e *Engine) Stage() int {
	return e.stage
}

// Specialist returns the specialist of the running triage.
func (e *Engine) Specialist() string {
	return e.specialist
}

// Completed returns how many triages have finished on this engine.
func (e *Engine) Completed() int {
	return e.completed
}
