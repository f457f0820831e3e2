package daemon

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
)

func TestClientAgainstHandler(t *testing.T) {
	s, svc := newTestDaemon(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	if _, _, err := svc.Add(ledger.Draft{Domain: model.DomainExpense, Kind: model.KindExpense, Amount: "1250", Category: "Food"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.pollOnce()

	ctx := context.Background()
	c := NewClient(srv.URL)

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Summary.SpentToday != 1250 || st.Summary.OverLimits != 1 {
		t.Fatalf("status summary = %+v", st.Summary)
	}

	unread, notes, err := c.Notifications(ctx, true)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if unread != 1 || len(notes) != 1 {
		t.Fatalf("unread = %d, notes = %d", unread, len(notes))
	}

	if err := c.MarkRead(ctx, notes[0].ID[:8]); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := c.MarkRead(ctx, "zzzzzzzz"); !errors.Is(err, ErrDaemonNotFound) {
		t.Fatalf("MarkRead unknown = %v, want ErrDaemonNotFound", err)
	}

	marked, err := c.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if marked != 0 {
		t.Fatalf("marked = %d, want 0 after MarkRead", marked)
	}
}

func TestNewClientAddr(t *testing.T) {
	if got := NewClient("127.0.0.1:8787").baseURL; got != "http://127.0.0.1:8787" {
		t.Fatalf("baseURL = %q", got)
	}
	if got := NewClient("http://localhost:9000/").baseURL; got != "http://localhost:9000" {
		t.Fatalf("baseURL = %q", got)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()

	if _, err := NewClient(addr).Status(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}
