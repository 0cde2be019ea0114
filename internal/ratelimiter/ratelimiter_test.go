package ratelimiter

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeAPI struct {
	mu       sync.Mutex
	sentAt   []time.Time
	requests int
	err      error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sentAt = append(f.sentAt, time.Now())
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}

	msg, _ := c.(tgbotapi.MessageConfig)

	return tgbotapi.Message{MessageID: len(f.sentAt), Text: msg.Text}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSendDelaysMessagesToSameChat(t *testing.T) {
	api := &fakeAPI{}
	rl := New(api, slog.Default(), WithRates(50*time.Millisecond, 100*time.Millisecond))
	defer rl.Stop()

	for range 2 {
		if _, err := rl.Send(tgbotapi.NewMessage(42, "hello")); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	if len(api.sentAt) != 2 {
		t.Fatalf("expected two messages, got %d", len(api.sentAt))
	}

	if gap := api.sentAt[1].Sub(api.sentAt[0]); gap < 40*time.Millisecond {
		t.Fatalf("expected messages to be spaced out, gap = %v", gap)
	}
}

func TestSendReturnsAPIResult(t *testing.T) {
	api := &fakeAPI{}
	rl := New(api, slog.Default())
	defer rl.Stop()

	msg, err := rl.Send(tgbotapi.NewMessage(1, "text"))
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if msg.Text != "text" || msg.MessageID != 1 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	failing := New(&fakeAPI{err: errors.New("forbidden")}, slog.Default())
	defer failing.Stop()

	if _, err = failing.Send(tgbotapi.NewMessage(2, "text")); err == nil {
		t.Fatalf("expected API error to be returned")
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := New(&fakeAPI{}, slog.Default())
	rl.Stop()

	if _, err := rl.Send(tgbotapi.NewMessage(1, "text")); err == nil {
		t.Fatalf("expected error after stop")
	}
}

func TestRequestBypassesQueue(t *testing.T) {
	api := &fakeAPI{}
	rl := New(api, slog.Default())
	defer rl.Stop()

	if _, err := rl.Request(tgbotapi.NewChatAction(1, tgbotapi.ChatTyping)); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if api.requests != 1 {
		t.Fatalf("expected one direct request, got %d", api.requests)
	}
}

func TestRateByChatType(t *testing.T) {
	rl := &RateLimiter{privateChatRate: time.Second, groupChatRate: 3 * time.Second}

	if got := rl.rate(100); got != time.Second {
		t.Fatalf("unexpected private rate: %v", got)
	}

	if got := rl.rate(-100); got != 3*time.Second {
		t.Fatalf("unexpected group rate: %v", got)
	}
}
