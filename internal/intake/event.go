package intake

import (
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/voice"
)

// EventType identifies a client event.
type EventType string

const (
	EventHello          EventType = "hello"
	EventVoices         EventType = "voices"
	EventNext           EventType = "next"
	EventBack           EventType = "back"
	EventRegisterInput  EventType = "register_input"
	EventRegisterSubmit EventType = "register_submit"
	EventSelectLanguage EventType = "select_language"
	EventChatSubmit     EventType = "chat_submit"
	EventVoiceStart     EventType = "voice_start"
	EventTranscript     EventType = "transcript"
	EventListenEnd      EventType = "listen_end"
	EventListenError    EventType = "listen_error"
	EventSOS            EventType = "sos"
	EventFamilyView     EventType = "family_view"
	EventViewMap        EventType = "view_map"
	EventFindCaretakers EventType = "find_caretakers"
	EventBookOpen       EventType = "book_open"
	EventBookDate       EventType = "book_date"
	EventBookTime       EventType = "book_time"
	EventBookConfirm    EventType = "book_confirm"
	EventBookDismiss    EventType = "book_dismiss"
	EventFamilyInput    EventType = "family_input"
	EventFamilyAdd      EventType = "family_add"
)

// Capabilities are the speech features the client reported at startup.
type Capabilities struct {
	SpeechSynthesis   bool `json:"speech_synthesis"`
	SpeechRecognition bool `json:"speech_recognition"`
}

// Event is one user action or capability callback. Only the fields relevant
// to Type are set.
type Event struct {
	Type EventType `json:"type"`

	Capabilities *Capabilities `json:"capabilities,omitempty"`
	Voices       []voice.Voice `json:"voices,omitempty"`

	Username    string          `json:"username,omitempty"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	Language    domain.Language `json:"language,omitempty"`
	Text        string          `json:"text,omitempty"`

	DoctorID int    `json:"doctor_id,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`

	Name               string `json:"name,omitempty"`
	Relationship       string `json:"relationship,omitempty"`
	IsEmergencyContact bool   `json:"is_emergency_contact,omitempty"`

	Error string `json:"error,omitempty"`
}
