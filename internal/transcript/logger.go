// Package transcript writes intake conversations to per-session NDJSON files.
package transcript

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/session"
	json "github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

const closeTimeout = 5 * time.Second

// Config controls conversation logging.
type Config struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Event is one line of a conversation log.
type Event struct {
	Timestamp  time.Time    `json:"ts"`
	VisitorID  string       `json:"visitor_id"`
	SessionID  string       `json:"session_id"`
	Role       session.Role `json:"role"`
	Content    string       `json:"content"`
	ContentRaw string       `json:"content_raw"`
}

// Logger appends chat messages to <dir>/<visitor>/<session>.ndjson from a
// background goroutine. When the queue is full the oldest event is dropped.
type Logger struct {
	dir    string
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	logger *slog.Logger

	files map[string]*os.File // owned by the writer goroutine
}

var _ intake.TranscriptSink = (*Logger)(nil)

// Nop discards everything.
type Nop struct{}

func (Nop) Log(string, string, session.Message) {}

// New returns a Logger, or Nop when logging is disabled.
func New(cfg Config, logger *slog.Logger) (intake.TranscriptSink, func() error, error) {
	if !cfg.Enabled {
		return Nop{}, func() error { return nil }, nil
	}
	l, err := NewLogger(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Close, nil
}

// NewLogger creates the log directory and starts the writer.
func NewLogger(cfg Config, logger *slog.Logger) (*Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Logger{
		dir:    cfg.Dir,
		events: make(chan Event, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		files:  make(map[string]*os.File),
	}
	l.wg.Add(1)
	go l.run()
	return l, nil
}

// Log queues a chat message. It never blocks.
func (l *Logger) Log(visitorID, sessionID string, m session.Message) {
	ev := Event{
		Timestamp:  m.At,
		VisitorID:  visitorID,
		SessionID:  sessionID,
		Role:       m.Role,
		Content:    cleanForReadability(m.Text),
		ContentRaw: m.Text,
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	select {
	case l.events <- ev:
		return
	case <-l.ctx.Done():
		return
	default:
	}

	l.logger.Warn("Conversation log queue full, dropping oldest event", "queue_len", len(l.events))
	select {
	case <-l.events:
	default:
	}
	select {
	case l.events <- ev:
	case <-l.ctx.Done():
	default:
	}
}

func (l *Logger) run() {
	defer l.wg.Done()
	defer l.closeFiles()
	for {
		select {
		case ev := <-l.events:
			l.write(ev)
		case <-l.ctx.Done():
			// Flush what is already queued.
			for {
				select {
				case ev := <-l.events:
					l.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(ev Event) {
	path := filepath.Join(l.dir, pathSegment(ev.VisitorID), pathSegment(ev.SessionID)+".ndjson")
	f, err := l.file(path)
	if err != nil {
		l.logger.Warn("Failed to open conversation log", "path", path, "error", err)
		return
	}

	line, err := json.Marshal(ev)
	if err != nil {
		l.logger.Warn("Failed to encode conversation event", "error", err)
		return
	}
	w := bufio.NewWriter(f)
	_, _ = w.Write(line)
	_ = w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		l.logger.Warn("Failed to write conversation log", "path", path, "error", err)
	}
}

func (l *Logger) file(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // path is built from sanitized ids
	if err != nil {
		return nil, err
	}
	l.files[path] = f
	return f, nil
}

func (l *Logger) closeFiles() {
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			l.logger.Debug("Failed to close conversation log", "path", path, "error", err)
		}
		delete(l.files, path)
	}
}

// Close flushes queued events and closes all files.
func (l *Logger) Close() error {
	l.once.Do(func() {
		l.cancel()
		done := make(chan struct{})
		go func() {
			l.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(closeTimeout):
			l.logger.Warn("Conversation logger shutdown timeout")
		}
	})
	return nil
}

// cleanForReadability normalises Unicode and collapses whitespace.
func cleanForReadability(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// pathSegment keeps ids usable as a single path element.
func pathSegment(id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if id == "" {
		return "unknown"
	}
	return id
}
