// Package live bridges intake sessions to browser tabs over WebSocket.
package live

import (
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/session"
)

// Frame types sent to the client.
const (
	FrameScreen       = "screen"
	FrameNav          = "nav"
	FrameInvalid      = "invalid"
	FrameToast        = "toast"
	FrameMessage      = "message"
	FrameChatInput    = "chat_input"
	FrameTranslations = "translations"
	FrameDoctors      = "doctors"
	FrameCaretakers   = "caretakers"
	FrameFamily       = "family"
	FrameBooking      = "booking"
	FrameBookingHide  = "booking_hide"
	FrameMap          = "map"
	FrameSpeak        = "speak"
	FrameSpeechCancel = "speech_cancel"
	FrameListen       = "listen"
	FrameListening    = "listening"
	FramePong         = "pong"
	FrameError        = "error"
)

// Frame is one server → client message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type screenData struct {
	Screen session.Screen `json:"screen"`
}

type invalidData struct {
	Form   intake.Form `json:"form"`
	Fields []string    `json:"fields"`
}

type toastData struct {
	Kind intake.ToastKind `json:"kind"`
	Text string           `json:"text"`
}

type textData struct {
	Text string `json:"text"`
}

type translationsData struct {
	Language     domain.Language   `json:"language"`
	Translations map[string]string `json:"translations"`
}

type doctorsData struct {
	Specialist string          `json:"specialist"`
	Doctors    []domain.Doctor `json:"doctors"`
}

type caretakersData struct {
	Caretakers []domain.Caretaker `json:"caretakers"`
}

type familyData struct {
	Members   []domain.FamilyMember `json:"members"`
	Emergency []domain.FamilyMember `json:"emergency"`
	Notice    string                `json:"notice,omitempty"`
}

type listenData struct {
	Locale string `json:"locale"`
}

type listeningData struct {
	On bool `json:"on"`
}

type errorData struct {
	Code string `json:"code"`
}

// clientPing is the keepalive frame type. Every other inbound frame is an
// intake.Event.
const clientPing intake.EventType = "ping"
