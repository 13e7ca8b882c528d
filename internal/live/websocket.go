package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/identity"
	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/coder/websocket"
	json "github.com/goccy/go-json"
)

const (
	maxMessageSize      = 64 << 10
	lastSeenGranularity = time.Minute
)

// WebSocketHandler serves /ws/intake.
type WebSocketHandler struct {
	repo          store.Repository
	sm            *SessionManager
	allowedOrigin string
	isDev         bool
	queueSize     int
	writeTimeout  time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(repo store.Repository, sm *SessionManager, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		repo:          repo,
		sm:            sm,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		queueSize:     defaultOutboxSize,
		writeTimeout:  defaultWriteTimeout,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if visitorID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	slog.Info("WebSocket connection request", "visitor_id", visitorID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "visitor_id", visitorID)
		return
	}
	ws.SetReadLimit(maxMessageSize)

	log := slog.Default().With("visitor_id", visitorID, "session_id", sessionID)
	out := newOutbox(ws, h.queueSize, h.writeTimeout, log)
	defer out.close("session ended")

	sess, resumed := h.sm.Attach(visitorID, sessionID, out)
	defer h.sm.Detach(visitorID, sessionID, out)
	log.Info("Intake client attached", "resumed", resumed)

	h.readLoop(r.Context(), ws, out, sess, log)
	log.Info("Intake client detached")
}

// EndSession handles POST /end_session. Every visit of the visitor is
// ended and its connections closed; the next connection starts afresh.
func (h *WebSocketHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	if visitorID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	h.sm.CloseSession(visitorID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, out *outbox, sess *Session, log *slog.Logger) {
	var lastSeen time.Time
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Debug("WebSocket closed by client")
			} else {
				log.Debug("WebSocket read error", "error", err)
			}
			return
		}

		var ev intake.Event
		if err := json.Unmarshal(message, &ev); err != nil || ev.Type == "" {
			log.Warn("Malformed client frame", "error", err)
			h.reply(out, Frame{Type: FrameError, Data: errorData{Code: "malformed_frame"}}, log)
			continue
		}

		if ev.Type == clientPing {
			h.reply(out, Frame{Type: FramePong}, log)
		} else {
			sess.Dispatch(ev)
		}

		if now := time.Now(); now.Sub(lastSeen) >= lastSeenGranularity {
			lastSeen = now
			go func(visitorID string) {
				updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.repo.UpdateLastSeen(updateCtx, visitorID, now); err != nil {
					slog.Warn("Failed to update last seen", "error", err)
				}
			}(sess.VisitorID)
		}
	}
}

func (h *WebSocketHandler) reply(out *outbox, f Frame, log *slog.Logger) {
	data, err := json.Marshal(f)
	if err != nil {
		log.Error("Failed to encode frame", "type", f.Type, "error", err)
		return
	}
	out.enqueue(data)
}
