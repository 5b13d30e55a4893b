package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event names consumed by the dispatcher sinks.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationRejected  = "reservation_rejected"
	EventReservationOngoing   = "reservation_picked_up"
	EventReservationCompleted = "reservation_completed"
	EventReservationCancelled = "reservation_cancelled"
	EventDepositCaptured      = "deposit_captured"
	EventDepositReleased      = "deposit_released"
)

// Intent is one pending side effect of a committed transition: who to
// tell and with what context. The transition never waits on it.
type Intent struct {
	Event         string
	ReservationID uuid.UUID
	Recipient     string // "customer" or "store"
	Locale        string
	Context       map[string]any
}

// Sink delivers one intent over a concrete channel (email, SMS, webhook).
type Sink interface {
	Send(ctx context.Context, intent Intent) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, intents []Intent)
}

// AsyncDispatcher fans intents out to its sinks in a background
// goroutine. Failures are logged and swallowed: a committed transition is
// never rolled back or retried because a notification failed.
type AsyncDispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewAsyncDispatcher(logger *slog.Logger, sinks ...Sink) *AsyncDispatcher {
	return &AsyncDispatcher{sinks: sinks, logger: logger}
}

func (d *AsyncDispatcher) Dispatch(ctx context.Context, intents []Intent) {
	if len(intents) == 0 {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification dispatch panicked", "panic", r)
			}
		}()
		// Detach from the request context; the caller has already returned.
		bg := context.WithoutCancel(ctx)
		for _, intent := range intents {
			for _, sink := range d.sinks {
				if err := sink.Send(bg, intent); err != nil {
					d.logger.Warn("notification dispatch failed",
						"event", intent.Event,
						"reservation_id", intent.ReservationID,
						"error", err)
				}
			}
		}
	}()
}

// LogSink records intents to the log. Stands in for the real email/SMS
// senders, which live outside this service.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, intent Intent) error {
	s.logger.Info("notification",
		"event", intent.Event,
		"reservation_id", intent.ReservationID,
		"recipient", intent.Recipient)
	return nil
}
