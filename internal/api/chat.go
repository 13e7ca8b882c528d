package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/swasthya-bandhu/internal/backend"
	"github.com/ashureev/swasthya-bandhu/internal/identity"
)

const (
	replyMatched  = "Based on your symptoms, I recommend consulting a %s. They specialize in treating conditions related to your concerns. Would you like to see available %s doctors nearby?"
	replyFallback = "Thank you for sharing your concerns. For a proper diagnosis, I recommend consulting with a General Physician who can evaluate your symptoms and refer you to the appropriate specialist if needed."
)

// Reply classifies message and returns the assistant text with the
// recommended specialist. It never misses: unmatched text is sent to the
// classifier's fallback.
func (h *Handler) Reply(message string) (text, specialist string) {
	specialist, matched := h.classifier.Classify(message)
	if matched {
		return fmt.Sprintf(replyMatched, specialist, specialist), specialist
	}
	return replyFallback, specialist
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.limiter != nil && !h.limiter.Allow(visitorID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req backend.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		fail(w, "Message is required")
		return
	}

	text, specialist := h.Reply(message)
	slog.Debug("Chat classified",
		"visitor_id", visitorID,
		"session_id", identity.SessionIDFromContext(r.Context()),
		"specialist", specialist)

	JSON(w, http.StatusOK, backend.ChatReply{
		Result:     backend.Result{Success: true},
		Response:   text,
		Specialist: specialist,
	})
}
