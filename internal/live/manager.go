package live

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/intake"
)

// Visit is one running intake session. *intake.Orchestrator plus its loop
// satisfy it in production.
type Visit interface {
	Start()
	Dispatch(ev intake.Event)
	Close()
}

// VisitFactory starts a visit that renders to view.
type VisitFactory func(visitorID, sessionID string, view intake.Presenter) Visit

// Session is a visit together with the tab currently attached to it.
type Session struct {
	VisitorID string
	SessionID string

	visit      Visit
	bridge     *bridge
	detachedAt time.Time // zero while attached
}

// Dispatch forwards a client event to the visit.
func (s *Session) Dispatch(ev intake.Event) {
	s.visit.Dispatch(ev)
}

// SessionManager keeps visits alive across reconnects. Sessions are keyed by
// visitor and tab session id; a tab that reconnects with the same ids resumes
// its visit.
type SessionManager struct {
	mu      sync.Mutex
	active  map[string]map[string]*Session
	factory VisitFactory
	now     func() time.Time
	logger  *slog.Logger
}

// NewSessionManager creates a session manager.
func NewSessionManager(factory VisitFactory, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		active:  make(map[string]map[string]*Session),
		factory: factory,
		now:     time.Now,
		logger:  logger,
	}
}

// Attach binds out to the visitor's session, starting a visit if none
// exists. A previously attached connection is closed. The second result
// reports whether an existing visit was resumed.
func (m *SessionManager) Attach(visitorID, sessionID string, out outlet) (*Session, bool) {
	m.mu.Lock()
	sessions, ok := m.active[visitorID]
	if !ok {
		sessions = make(map[string]*Session)
		m.active[visitorID] = sessions
	}
	sess, resumed := sessions[sessionID]
	if !resumed {
		b := newBridge(m.logger)
		sess = &Session{VisitorID: visitorID, SessionID: sessionID, bridge: b}
		b.attach(out)
		sess.visit = m.factory(visitorID, sessionID, b)
		sess.visit.Start()
		sessions[sessionID] = sess
		m.mu.Unlock()
		m.logger.Info("Intake session started", "visitor_id", visitorID, "session_id", sessionID)
		return sess, false
	}
	prev := sess.bridge.attach(out)
	sess.detachedAt = time.Time{}
	m.mu.Unlock()

	if prev != nil && prev != out {
		prev.close("session replaced")
	}
	m.logger.Info("Intake session resumed", "visitor_id", visitorID, "session_id", sessionID)
	return sess, true
}

// Detach releases out if it is still the session's connection. The visit
// keeps running until it is swept.
func (m *SessionManager) Detach(visitorID, sessionID string, out outlet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.lookup(visitorID, sessionID)
	if sess == nil || !sess.bridge.detach(out) {
		return
	}
	sess.detachedAt = m.now()
	m.logger.Info("Intake session detached", "visitor_id", visitorID, "session_id", sessionID)
}

// Get returns the session for visitor and tab, or nil.
func (m *SessionManager) Get(visitorID, sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(visitorID, sessionID)
}

func (m *SessionManager) lookup(visitorID, sessionID string) *Session {
	if sessions, ok := m.active[visitorID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Count returns the number of live visits.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sessions := range m.active {
		n += len(sessions)
	}
	return n
}

// Sweep ends visits that have been detached for longer than ttl and returns
// how many were ended.
func (m *SessionManager) Sweep(ttl time.Duration) int {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for visitorID, sessions := range m.active {
		for sid, sess := range sessions {
			if sess.detachedAt.IsZero() || now.Sub(sess.detachedAt) < ttl {
				continue
			}
			expired = append(expired, sess)
			delete(sessions, sid)
		}
		if len(sessions) == 0 {
			delete(m.active, visitorID)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.visit.Close()
		m.logger.Info("Intake session expired", "visitor_id", sess.VisitorID, "session_id", sess.SessionID)
	}
	return len(expired)
}

// CloseSession ends every visit of a visitor and closes their connections.
func (m *SessionManager) CloseSession(visitorID string) {
	m.mu.Lock()
	sessions := m.active[visitorID]
	delete(m.active, visitorID)
	m.mu.Unlock()

	for _, sess := range sessions {
		m.end(sess, "session closed")
	}
}

// CloseAll ends every visit. Used on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	active := m.active
	m.active = make(map[string]map[string]*Session)
	m.mu.Unlock()

	for _, sessions := range active {
		for _, sess := range sessions {
			m.end(sess, "server shutting down")
		}
	}
}

func (m *SessionManager) end(sess *Session, reason string) {
	if out := sess.bridge.attach(nil); out != nil {
		out.close(reason)
	}
	sess.visit.Close()
	m.logger.Info("Intake session closed", "visitor_id", sess.VisitorID, "session_id", sess.SessionID, "reason", reason)
}
