package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestOutbox_OverflowDisconnects(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		// No writer runs, so the third frame overflows a queue of two.
		o := unstartedOutbox(ws, 2, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
		for _, f := range []string{`{"type":"screen"}`, `{"type":"nav"}`, `{"type":"booking"}`} {
			o.enqueue([]byte(f))
		}
		o.enqueue([]byte(`{"type":"toast"}`))
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	_, data, err := conn.Read(ctx)
	if err == nil {
		t.Fatalf("queued frame delivered after overflow: %s", data)
	}
	if got := websocket.CloseStatus(err); got != websocket.StatusTryAgainLater {
		t.Errorf("close status = %v (%v), want StatusTryAgainLater", got, err)
	}
}
