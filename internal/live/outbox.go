package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	defaultOutboxSize   = 128
	defaultWriteTimeout = 10 * time.Second
	outboxCloseTimeout  = 5 * time.Second
)

// outbox writes frames to a WebSocket from its own goroutine so the intake
// loop never blocks on a slow client. A client that lets the queue fill up
// is disconnected: frames carry screen state, so none may be skipped, and
// the reconnect's hello brings the client back in sync.
type outbox struct {
	conn         *websocket.Conn
	frames       chan []byte
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	once         sync.Once
	writeTimeout time.Duration
	logger       *slog.Logger
}

func newOutbox(conn *websocket.Conn, size int, writeTimeout time.Duration, logger *slog.Logger) *outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := unstartedOutbox(conn, size, writeTimeout, logger)
	o.wg.Add(1)
	go o.run()
	return o
}

func unstartedOutbox(conn *websocket.Conn, size int, writeTimeout time.Duration, logger *slog.Logger) *outbox {
	ctx, cancel := context.WithCancel(context.Background())
	return &outbox{
		conn:         conn,
		frames:       make(chan []byte, size),
		ctx:          ctx,
		cancel:       cancel,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (o *outbox) enqueue(data []byte) {
	select {
	case <-o.ctx.Done():
		return
	default:
	}

	select {
	case o.frames <- data:
	default:
		o.logger.Warn("Outbox full, disconnecting slow client", "queue_len", len(o.frames))
		o.cancel()
		go o.closeWith(websocket.StatusTryAgainLater, "client too slow")
	}
}

func (o *outbox) run() {
	defer o.wg.Done()
	for {
		select {
		case <-o.ctx.Done():
			return
		case data := <-o.frames:
			ctx, cancel := context.WithTimeout(o.ctx, o.writeTimeout)
			err := o.conn.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if o.ctx.Err() == nil {
					o.logger.Debug("WebSocket write error", "error", err)
				}
				return
			}
		}
	}
}

// close stops the writer, discards unsent frames and closes the connection.
func (o *outbox) close(reason string) {
	o.closeWith(websocket.StatusNormalClosure, reason)
}

func (o *outbox) closeWith(code websocket.StatusCode, reason string) {
	o.once.Do(func() {
		o.cancel()

		done := make(chan struct{})
		go func() {
			o.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(outboxCloseTimeout):
			o.logger.Warn("Outbox writer shutdown timeout")
		}

		drained := 0
	drain:
		for {
			select {
			case <-o.frames:
				drained++
			default:
				break drain
			}
		}
		if drained > 0 {
			o.logger.Debug("Discarded unsent frames", "count", drained)
		}

		if err := o.conn.Close(code, reason); err != nil {
			o.logger.Debug("Failed to close websocket", "error", err)
		}
	})
}
