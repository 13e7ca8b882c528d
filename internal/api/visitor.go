package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/identity"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/ashureev/swasthya-bandhu/internal/validation"
	"github.com/go-chi/chi/v5"
)

const (
	msgRegistered       = "Registration successful"
	msgRegisterRequired = "Username and phone number are required"
	msgPhoneDigits      = "Phone number must be 10 digits"
	msgAllFields        = "All fields are required"
	msgRegisterFirst    = "Please register first"
	msgMemberAdded      = "Family member added successfully"
	msgUnknownLanguage  = "Unsupported language"
	msgServerError      = "Something went wrong. Please try again."
)

// formMessage explains the first failing field of a form.
func formMessage(res validation.Result, required string) string {
	for _, name := range res.Invalid {
		if name != "phone_number" {
			return required
		}
	}
	return msgPhoneDigits
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req backend.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Username == "" || req.PhoneNumber == "" {
		fail(w, msgRegisterRequired)
		return
	}
	if res := validation.Validate(validation.RegisterFields(req.Username, req.PhoneNumber)); !res.OK {
		fail(w, formMessage(res, msgRegisterRequired))
		return
	}

	user, err := h.repo.GetUser(r.Context(), visitorID)
	if err != nil {
		slog.Error("Failed to load visitor", "visitor_id", visitorID, "error", err)
		fail(w, msgServerError)
		return
	}
	now := h.now()
	if user == nil {
		user = &domain.User{VisitorID: visitorID, Language: domain.DefaultLanguage, CreatedAt: now}
	}
	user.Username = req.Username
	user.PhoneNumber = req.PhoneNumber
	user.Registered = true
	user.LastSeenAt = now
	user.UpdatedAt = now

	if err := h.repo.UpsertUser(r.Context(), user); err != nil {
		slog.Error("Failed to register visitor", "visitor_id", visitorID, "error", err)
		fail(w, msgServerError)
		return
	}

	slog.Info("Visitor registered", "visitor_id", visitorID)
	JSON(w, http.StatusOK, backend.Result{Success: true, Message: msgRegistered})
}

// SetLanguage handles POST /set_language.
func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())

	var req backend.LanguageRequest
	if !decode(w, r, &req) {
		return
	}
	lang, ok := domain.ParseLanguage(string(req.Language))
	if !ok {
		fail(w, msgUnknownLanguage)
		return
	}

	if err := h.repo.SetLanguage(r.Context(), visitorID, lang); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(w, "Visitor not found")
			return
		}
		slog.Error("Failed to store language", "visitor_id", visitorID, "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.Result{Success: true})
}

// GetTranslations handles GET /get_translations/{language}. Unknown
// languages get the English table.
func (h *Handler) GetTranslations(w http.ResponseWriter, r *http.Request) {
	lang, _ := domain.ParseLanguage(chi.URLParam(r, "language"))
	JSON(w, http.StatusOK, backend.TranslationsResponse{
		Result:       backend.Result{Success: true},
		Translations: Translations(lang),
	})
}

// registeredVisitor loads the calling visitor and reports whether they may
// use family features. It writes the failure response itself.
func (h *Handler) registeredVisitor(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	user, err := h.repo.GetUser(r.Context(), visitorID)
	if err != nil {
		slog.Error("Failed to load visitor", "visitor_id", visitorID, "error", err)
		fail(w, msgServerError)
		return nil, false
	}
	if user == nil || !user.IsRegistered() {
		fail(w, msgRegisterFirst)
		return nil, false
	}
	return user, true
}

// GetFamilyMembers handles GET /get_family_members.
func (h *Handler) GetFamilyMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := h.registeredVisitor(w, r)
	if !ok {
		return
	}
	members, err := h.repo.ListFamilyMembers(r.Context(), user.VisitorID)
	if err != nil {
		slog.Error("Failed to list family members", "visitor_id", user.VisitorID, "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.FamilyResponse{
		Result:        backend.Result{Success: true},
		FamilyMembers: members,
	})
}

// AddFamilyMember handles POST /add_family_member.
func (h *Handler) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req backend.FamilyMemberRequest
	if !decode(w, r, &req) {
		return
	}
	user, ok := h.registeredVisitor(w, r)
	if !ok {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Relationship = strings.TrimSpace(req.Relationship)
	if res := validation.Validate(validation.FamilyFields(req.Name, req.PhoneNumber, req.Relationship)); !res.OK {
		fail(w, formMessage(res, msgAllFields))
		return
	}

	member := &domain.FamilyMember{
		VisitorID:          user.VisitorID,
		Name:               req.Name,
		PhoneNumber:        req.PhoneNumber,
		Relationship:       req.Relationship,
		IsEmergencyContact: req.IsEmergencyContact,
	}
	if err := h.repo.AddFamilyMember(r.Context(), member); err != nil {
		slog.Error("Failed to add family member", "visitor_id", user.VisitorID, "error", err)
		fail(w, msgServerError)
		return
	}
	JSON(w, http.StatusOK, backend.Result{Success: true, Message: msgMemberAdded})
}
