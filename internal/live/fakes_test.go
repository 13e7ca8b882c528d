package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/intake"
	"github.com/ashureev/swasthya-bandhu/internal/store"
	"github.com/coder/websocket"
	json "github.com/goccy/go-json"
)

type fakeOutlet struct {
	mu     sync.Mutex
	frames [][]byte
	closed string
}

func (f *fakeOutlet) enqueue(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
}

func (f *fakeOutlet) close(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = reason
}

func (f *fakeOutlet) closeReason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeOutlet) decoded(t *testing.T) []frame {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]frame, 0, len(f.frames))
	for _, data := range f.frames {
		var fr frame
		if err := json.Unmarshal(data, &fr); err != nil {
			t.Fatalf("decode frame %s: %v", data, err)
		}
		out = append(out, fr)
	}
	return out
}

type fakeVisit struct {
	mu      sync.Mutex
	view    intake.Presenter
	started int
	events  []intake.Event
	closed  bool
}

func (v *fakeVisit) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.started++
}

// Dispatch echoes the event type back as an info toast.
func (v *fakeVisit) Dispatch(ev intake.Event) {
	v.mu.Lock()
	v.events = append(v.events, ev)
	view := v.view
	v.mu.Unlock()
	view.Toast(intake.ToastInfo, string(ev.Type))
}

func (v *fakeVisit) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *fakeVisit) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

type visitRecorder struct {
	mu     sync.Mutex
	visits []*fakeVisit
}

func (r *visitRecorder) factory(_, _ string, view intake.Presenter) Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := &fakeVisit{view: view}
	r.visits = append(r.visits, v)
	return v
}

func (r *visitRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits)
}

func (r *visitRecorder) get(i int) *fakeVisit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visits[i]
}

// lastSeenRepo records UpdateLastSeen calls; nothing else is used by the handler.
type lastSeenRepo struct {
	store.Repository
	mu    sync.Mutex
	calls int
}

func (r *lastSeenRepo) UpdateLastSeen(context.Context, string, time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

// frame is a decoded server frame.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wsClient reads server frames, keeping unmatched ones for later waits.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	seen []frame
}

func (c *wsClient) send(v interface{}) {
	c.t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		c.t.Fatalf("encode: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// waitFor returns the first frame of type typ accepted by match.
func (c *wsClient) waitFor(typ string, match func(json.RawMessage) bool) frame {
	c.t.Helper()
	for i, f := range c.seen {
		if f.Type == typ && (match == nil || match(f.Data)) {
			c.seen = append(c.seen[:i:i], c.seen[i+1:]...)
			return f
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.t.Fatalf("waiting for %q frame: %v", typ, err)
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.t.Fatalf("decode frame %s: %v", data, err)
		}
		if f.Type == typ && (match == nil || match(f.Data)) {
			return f
		}
		c.seen = append(c.seen, f)
	}
}

func dataField(data json.RawMessage, v interface{}) bool {
	return json.Unmarshal(data, v) == nil
}
