// Package backend is the typed client the orchestrator uses to reach the
// intake API.
package backend

import (
	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

// Result is the common {success, message} envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
}

// LanguageRequest is the body of POST /set_language.
type LanguageRequest struct {
	Language domain.Language `json:"language"`
}

// TranslationsResponse is returned by GET /get_translations/{language}.
type TranslationsResponse struct {
	Result
	Translations map[string]string `json:"translations"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is returned by POST /chat.
type ChatReply struct {
	Result
	Response   string `json:"response"`
	Specialist string `json:"specialist,omitempty"`
}

// DoctorsResponse is returned by GET /get_doctors/{specialist}.
type DoctorsResponse struct {
	Result
	Doctors []domain.Doctor `json:"doctors"`
}

// DoctorResponse is returned by GET /get_doctor_location/{id}.
type DoctorResponse struct {
	Result
	Doctor *domain.Doctor `json:"doctor,omitempty"`
}

// CaretakersResponse is returned by GET /get_caretakers.
type CaretakersResponse struct {
	Result
	Caretakers []domain.Caretaker `json:"caretakers"`
}

// FamilyResponse is returned by GET /get_family_members.
type FamilyResponse struct {
	Result
	FamilyMembers []domain.FamilyMember `json:"family_members"`
}

// FamilyMemberRequest is the body of POST /add_family_member.
type FamilyMemberRequest struct {
	Name               string `json:"name"`
	PhoneNumber        string `json:"phone_number"`
	Relationship       string `json:"relationship"`
	IsEmergencyContact bool   `json:"is_emergency_contact"`
}

// BookingRequest is the body of POST /book_appointment.
type BookingRequest struct {
	DoctorID int    `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

// BookingResult is returned by POST /book_appointment.
type BookingResult struct {
	Result
	Reference string `json:"reference,omitempty"`
}

// AppointmentsResponse is returned by GET /get_appointments.
type AppointmentsResponse struct {
	Result
	Appointments []domain.Appointment `json:"appointments"`
}
