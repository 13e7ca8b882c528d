package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts booking notifications to one chat. Messages are queued and
// sent from a background goroutine; when the queue is full the oldest
// pending message is dropped.
type Telegram struct {
	api    sender
	chatID int64
	queue  chan Booking
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewTelegram authorizes the bot token and starts the sender.
func NewTelegram(token string, chatID int64, queueSize int, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Telegram notifier authorized", "account", api.Self.UserName, "chat_id", chatID)
	return newTelegram(api, chatID, queueSize, logger), nil
}

func newTelegram(api sender, chatID int64, queueSize int, logger *slog.Logger) *Telegram {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Telegram{
		api:    api,
		chatID: chatID,
		queue:  make(chan Booking, queueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// BookingConfirmed queues b without blocking.
func (t *Telegram) BookingConfirmed(b Booking) {
	if t.ctx.Err() != nil {
		return
	}
	select {
	case t.queue <- b:
		return
	default:
	}

	t.logger.Warn("Notification queue full, dropping oldest", "queue_len", len(t.queue))
	select {
	case <-t.queue:
	default:
	}
	select {
	case t.queue <- b:
	default:
		t.logger.Warn("Failed to queue booking notification", "reference", b.Reference)
	}
}

func (t *Telegram) run() {
	defer t.wg.Done()
	for {
		select {
		case <-t.ctx.Done():
			return
		case b := <-t.queue:
			t.send(b)
		}
	}
}

func (t *Telegram) send(b Booking) {
	msg := tgbotapi.NewMessage(t.chatID, FormatBooking(b))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send booking notification", "reference", b.Reference, "error", err)
		return
	}
	t.logger.Debug("Booking notification sent", "reference", b.Reference)
}

// Close stops the sender after flushing queued messages, waiting at most timeout.
func (t *Telegram) Close(timeout time.Duration) {
	t.closeOnce.Do(func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case b := <-t.queue:
					t.send(b)
				default:
					return
				}
			}
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			t.logger.Warn("Notification flush timed out", "queue_remaining", len(t.queue))
		}

		t.cancel()
		t.wg.Wait()
	})
}
