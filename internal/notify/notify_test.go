package notify

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"finsight/internal/log"
)

func TestNotify_NewestReplacesPending(t *testing.T) {
	ctx := context.Background()
	n := New(NewMemoryStore(16, DefaultTTL), DefaultTTL, log.Discard())

	n.Notify(ctx, "client-1", "Account added", Success)
	n.Notify(ctx, "client-1", "Delete failed", Error)

	got, ok := n.Current(ctx, "client-1")
	if !ok {
		t.Fatal("expected a visible notification")
	}
	if got.Message != "Delete failed" || got.Severity != Error {
		t.Fatalf("Current = %+v, want the second notification", got)
	}
}

func TestNotify_SlotsArePerClient(t *testing.T) {
	ctx := context.Background()
	n := New(NewMemoryStore(16, DefaultTTL), DefaultTTL, log.Discard())

	n.For("a").Notify(ctx, "for a", Info)
	if _, ok := n.Current(ctx, "b"); ok {
		t.Fatal("client b must not see client a's notification")
	}
	if got, ok := n.Current(ctx, "a"); !ok || got.Message != "for a" {
		t.Fatalf("client a slot = %+v, %v", got, ok)
	}
}

func TestNotify_ExpiresAndDismiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(16, 3*time.Second)
	now := time.Unix(100, 0)
	store.Cache().WithClock(func() time.Time { return now })
	n := New(store, 3*time.Second, log.Discard())

	n.Notify(ctx, "c", "Logged out", Info)
	now = now.Add(2 * time.Second)
	n.Notify(ctx, "c", "Login successful", Success)
	now = now.Add(2 * time.Second)
	if _, ok := n.Current(ctx, "c"); !ok {
		t.Fatal("second notify should restart the timer")
	}
	now = now.Add(time.Second)
	if _, ok := n.Current(ctx, "c"); ok {
		t.Fatal("notification should auto-dismiss after the TTL")
	}

	n.Notify(ctx, "c", "again", Warning)
	n.Dismiss(ctx, "c")
	if _, ok := n.Current(ctx, "c"); ok {
		t.Fatal("explicit dismiss should hide the notification")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"success": Success,
		"error":   Error,
		"info":    Info,
		"warning": Warning,
		"fatal":   Info,
		"":        Info,
	}
	for in, want := range cases {
		if got := ParseSeverity(in); got != want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", in, got, want)
		}
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, Notification) error { return errors.New("down") }
func (failingStore) Get(context.Context, string) (Notification, bool, error) {
	return Notification{}, false, errors.New("down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("down") }

func TestNotify_StoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	n := New(failingStore{}, 0, log.Discard())
	if n.TTL() != DefaultTTL {
		t.Fatalf("TTL = %v, want default", n.TTL())
	}
	n.Notify(ctx, "c", "x", Success)
	if _, ok := n.Current(ctx, "c"); ok {
		t.Fatal("failing store should read as empty")
	}
	n.Dismiss(ctx, "c")
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	n := New(NewRedisStore(client, time.Second), time.Second, log.Discard())
	n.Notify(ctx, "it-client", "first", Info)
	n.Notify(ctx, "it-client", "second", Error)
	got, ok := n.Current(ctx, "it-client")
	if !ok || got.Message != "second" {
		t.Fatalf("Current = %+v, %v", got, ok)
	}
	n.Dismiss(ctx, "it-client")
	if _, ok := n.Current(ctx, "it-client"); ok {
		t.Fatal("expected dismissed slot")
	}
}
