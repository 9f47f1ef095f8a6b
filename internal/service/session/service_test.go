package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/snapshot"
)

func TestIssueAndLookup(t *testing.T) {
	svc := New(snapshot.NewAdapter(snapshot.NewMemory(), nil), time.Hour, nil)
	ctx := context.Background()

	sess, err := svc.Issue(ctx, "ar-EG")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(sess.ID) < 40 {
		t.Fatalf("token too short: %q", sess.ID)
	}
	if sess.Language != "ar" {
		t.Fatalf("expected ar, got %q", sess.Language)
	}

	got, err := svc.Lookup(ctx, sess.ID)
	if err != nil || got.ID != sess.ID {
		t.Fatalf("lookup: %+v %v", got, err)
	}
	if _, err := svc.Lookup(ctx, "bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Lookup(ctx, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUserAndLanguageUpdates(t *testing.T) {
	store := snapshot.NewAdapter(snapshot.NewMemory(), nil)
	svc := New(store, time.Hour, nil)
	ctx := context.Background()
	sess, _ := svc.Issue(ctx, "")

	if _, err := svc.SetUser(ctx, sess.ID, "u-1"); err != nil {
		t.Fatalf("set user: %v", err)
	}
	if _, err := svc.SetLanguage(ctx, sess.ID, "ar"); err != nil {
		t.Fatalf("set language: %v", err)
	}

	// A fresh service restores the session from the backend.
	restored, err := New(store, time.Hour, nil).Lookup(ctx, sess.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.UserID != "u-1" || restored.Language != "ar" {
		t.Fatalf("unexpected restored session %+v", restored)
	}

	out, err := svc.ClearUser(ctx, sess.ID)
	if err != nil || out.UserID != "" {
		t.Fatalf("clear user: %+v %v", out, err)
	}
	if _, err := svc.SetUser(ctx, "bogus", "u-1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	svc := New(snapshot.NewAdapter(snapshot.NewMemory(), nil), time.Minute, nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	sess, _ := svc.Issue(ctx, "en")

	now = now.Add(2 * time.Minute)
	if _, err := svc.Lookup(ctx, sess.ID); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
	if svc.TTLSeconds() != 60 {
		t.Fatalf("unexpected ttl %d", svc.TTLSeconds())
	}
}

func TestSweepEvictsExpiredSessionsAndRunsHooks(t *testing.T) {
	store := snapshot.NewAdapter(snapshot.NewMemory(), nil)
	var released []string
	svc := New(store, time.Minute, nil, WithExpiryHooks(func(_ context.Context, id string) {
		released = append(released, id)
	}))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	old, _ := svc.Issue(ctx, "en")
	now = now.Add(45 * time.Second)
	fresh, _ := svc.Issue(ctx, "en")
	now = now.Add(30 * time.Second)

	if n := svc.Sweep(ctx); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	if len(released) != 1 || released[0] != old.ID {
		t.Fatalf("unexpected hook calls %v", released)
	}
	if got := snapshot.Load(ctx, store, snapshot.SessionKey(storeName, old.ID), domain.Session{}); got.ID != "" {
		t.Fatalf("expired session still persisted: %+v", got)
	}
	if _, err := svc.Lookup(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session dropped: %v", err)
	}
	if n := svc.Sweep(ctx); n != 0 {
		t.Fatalf("expected nothing left to sweep, got %d", n)
	}
}

func TestLookupOfExpiredSessionRunsHooks(t *testing.T) {
	var released []string
	svc := New(snapshot.NewAdapter(snapshot.NewMemory(), nil), time.Minute, nil, WithExpiryHooks(func(_ context.Context, id string) {
		released = append(released, id)
	}))
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	sess, _ := svc.Issue(ctx, "en")

	now = now.Add(2 * time.Minute)
	if _, err := svc.Lookup(ctx, sess.ID); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if len(released) != 1 || released[0] != sess.ID {
		t.Fatalf("unexpected hook calls %v", released)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	svc := New(snapshot.NewAdapter(snapshot.NewMemory(), nil), time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
