package bot

import (
	"context"
	"errors"
	"testing"

	"lexol/internal/domain"
)

func testLifecycle(store domain.BindingStore, p *fakePlatform) *Lifecycle {
	return NewLifecycle(store, p, LifecycleConfig{ChannelName: "freegpt-chat", SlowmodeSeconds: 15}, testLogger())
}

func TestSetup(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{nextChannelID: "c-new"}
	l := testLifecycle(store, p)

	channelID, err := l.Setup(context.Background(), "g1", "gpt4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != "c-new" {
		t.Fatalf("expected c-new, got %q", channelID)
	}

	if len(p.created) != 1 {
		t.Fatalf("expected one channel created, got %d", len(p.created))
	}
	if p.created[0].name != "freegpt-chat" || p.created[0].slowmode != 15 {
		t.Fatalf("unexpected channel params: %+v", p.created[0])
	}

	b, _ := store.Get(context.Background(), "g1")
	if b == nil || b.ChannelID != "c-new" || b.Model != domain.ModelGPT4 {
		t.Fatalf("unexpected binding: %+v", b)
	}
}

func TestSetup_InvalidModel(t *testing.T) {
	p := &fakePlatform{}
	l := testLifecycle(newFakeStore(), p)

	_, err := l.Setup(context.Background(), "g1", "gpt5")
	if !errors.Is(err, domain.ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
	if len(p.created) != 0 {
		t.Fatal("no channel must be created for an invalid model")
	}
}

func TestSetup_AlreadyBound(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "gpt3"); err != nil {
		t.Fatalf("first setup: %v", err)
	}
	_, err := l.Setup(context.Background(), "g1", "gpt4")
	if !errors.Is(err, domain.ErrAlreadyBound) {
		t.Fatalf("expected ErrAlreadyBound, got %v", err)
	}
	if len(p.created) != 1 {
		t.Fatalf("second setup must not create a channel, got %d", len(p.created))
	}
}

func TestSetup_ChannelCreateFailure(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{createErr: errors.New("missing permissions")}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "gpt3"); err == nil {
		t.Fatal("expected create error")
	}
	b, _ := store.Get(context.Background(), "g1")
	if b != nil {
		t.Fatalf("no binding must be stored when channel creation fails, got %+v", b)
	}
}

func TestSetup_OrphanOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("disk full")
	p := &fakePlatform{nextChannelID: "c-orphan"}
	l := testLifecycle(store, p)

	_, err := l.Setup(context.Background(), "g1", "gpt3")
	var orphan *domain.OrphanResourceError
	if !errors.As(err, &orphan) {
		t.Fatalf("expected OrphanResourceError, got %v", err)
	}
	if orphan.ChannelID != "c-orphan" {
		t.Fatalf("orphan should name the channel, got %+v", orphan)
	}
	// No rollback: the channel stays for an operator to clean up.
	if len(p.deleted) != 0 {
		t.Fatal("no automatic rollback expected")
	}
}

func TestReset(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{nextChannelID: "c1"}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "alpaca_7b"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := l.Reset(context.Background(), "g1"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if len(p.deleted) != 1 || p.deleted[0] != "c1" {
		t.Fatalf("expected channel c1 deleted, got %v", p.deleted)
	}
	b, _ := store.Get(context.Background(), "g1")
	if b != nil {
		t.Fatalf("binding should be gone, got %+v", b)
	}
}

func TestReset_NotBound(t *testing.T) {
	l := testLifecycle(newFakeStore(), &fakePlatform{})
	err := l.Reset(context.Background(), "g1")
	if !errors.Is(err, domain.ErrNotBound) {
		t.Fatalf("expected ErrNotBound, got %v", err)
	}
}

func TestReset_ChannelAlreadyGone(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{nextChannelID: "c1"}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "gpt3"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	p.deleteErr = errors.New("unknown channel")

	// A hand-deleted channel must not wedge the reset.
	if err := l.Reset(context.Background(), "g1"); err != nil {
		t.Fatalf("reset should still succeed: %v", err)
	}
	b, _ := store.Get(context.Background(), "g1")
	if b != nil {
		t.Fatal("binding should be removed even when channel delete fails")
	}
}

func TestResetThenSetup(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{nextChannelID: "c1"}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "gpt3"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := l.Reset(context.Background(), "g1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	p.nextChannelID = "c2"
	if _, err := l.Setup(context.Background(), "g1", "gpt4"); err != nil {
		t.Fatalf("setup after reset: %v", err)
	}
	b, _ := store.Get(context.Background(), "g1")
	if b == nil || b.ChannelID != "c2" || b.Model != domain.ModelGPT4 {
		t.Fatalf("unexpected binding: %+v", b)
	}
}

func TestHandleGuildRemoved_Idempotent(t *testing.T) {
	store := newFakeStore()
	p := &fakePlatform{}
	l := testLifecycle(store, p)

	if _, err := l.Setup(context.Background(), "g1", "gpt3"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	l.HandleGuildRemoved(context.Background(), "g1")
	b, _ := store.Get(context.Background(), "g1")
	if b != nil {
		t.Fatalf("binding should be gone, got %+v", b)
	}

	// Safe to call again, and for guilds that never had a binding.
	l.HandleGuildRemoved(context.Background(), "g1")
	l.HandleGuildRemoved(context.Background(), "g-unknown")
}
