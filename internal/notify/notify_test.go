//go:build unit

package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"rentflow/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelSink struct {
	sent chan notify.Intent
	err  error
}

func (s *channelSink) Send(_ context.Context, intent notify.Intent) error {
	s.sent <- intent
	return s.err
}

func collect(t *testing.T, ch chan notify.Intent, n int) []notify.Intent {
	t.Helper()
	var intents []notify.Intent
	for len(intents) < n {
		select {
		case intent := <-ch:
			intents = append(intents, intent)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d intents, got %d", n, len(intents))
		}
	}
	return intents
}

func TestAsyncDispatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("delivers every intent to every sink", func(t *testing.T) {
		first := &channelSink{sent: make(chan notify.Intent, 4)}
		second := &channelSink{sent: make(chan notify.Intent, 4)}
		dispatcher := notify.NewAsyncDispatcher(logger, first, second)

		intents := []notify.Intent{
			{Event: notify.EventReservationCreated, ReservationID: uuid.New(), Recipient: "customer"},
			{Event: notify.EventReservationCreated, ReservationID: uuid.New(), Recipient: "store"},
		}
		dispatcher.Dispatch(context.Background(), intents)

		got := collect(t, first.sent, 2)
		assert.Equal(t, "customer", got[0].Recipient)
		assert.Equal(t, "store", got[1].Recipient)
		collect(t, second.sent, 2)
	})

	t.Run("a failing sink does not stop delivery", func(t *testing.T) {
		failing := &channelSink{sent: make(chan notify.Intent, 4), err: errors.New("smtp down")}
		healthy := &channelSink{sent: make(chan notify.Intent, 4)}
		dispatcher := notify.NewAsyncDispatcher(logger, failing, healthy)

		dispatcher.Dispatch(context.Background(), []notify.Intent{
			{Event: notify.EventDepositCaptured, ReservationID: uuid.New(), Recipient: "customer"},
		})

		collect(t, failing.sent, 1)
		collect(t, healthy.sent, 1)
	})

	t.Run("delivery survives request cancellation", func(t *testing.T) {
		sink := &channelSink{sent: make(chan notify.Intent, 1)}
		dispatcher := notify.NewAsyncDispatcher(logger, sink)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		dispatcher.Dispatch(ctx, []notify.Intent{
			{Event: notify.EventReservationCancelled, ReservationID: uuid.New(), Recipient: "store"},
		})

		got := collect(t, sink.sent, 1)
		assert.Equal(t, notify.EventReservationCancelled, got[0].Event)
	})

	t.Run("no intents no goroutine", func(t *testing.T) {
		dispatcher := notify.NewAsyncDispatcher(logger)
		dispatcher.Dispatch(context.Background(), nil)
	})
}

func TestLogSink(t *testing.T) {
	sink := notify.NewLogSink(slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := sink.Send(context.Background(), notify.Intent{
		Event:         notify.EventReservationConfirmed,
		ReservationID: uuid.New(),
		Recipient:     "customer",
	})
	require.NoError(t, err)
}
