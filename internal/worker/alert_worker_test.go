package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"famledger/internal/amqp"
	"famledger/internal/core"
)

type fakeNotificationStore struct {
	saved   []core.Notification
	saveErr error
}

func (s *fakeNotificationStore) SaveNotification(_ context.Context, n *core.Notification) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	n.ID = "n-1"
	s.saved = append(s.saved, *n)
	return nil
}

func TestAlertWorker_HandleAlertMessage(t *testing.T) {
	msg := &amqp.BudgetAlertMessage{
		BudgetID:    "b-1",
		FamilyID:    "fam-1",
		BudgetName:  "Groceries",
		Decision:    core.AlertExceeded,
		PeriodStart: "2026-09-01",
		PeriodEnd:   "2026-09-30",
		LimitMinor:  18000,
		SpentMinor:  20000,
		PctUsed:     111,
	}

	t.Run("persists notification", func(t *testing.T) {
		store := &fakeNotificationStore{}
		w := NewAlertWorker(store)

		if err := w.HandleAlertMessage(context.Background(), msg); err != nil {
			t.Fatalf("HandleAlertMessage() error = %v", err)
		}

		if len(store.saved) != 1 {
			t.Fatalf("saved %d notifications, want 1", len(store.saved))
		}
		n := store.saved[0]
		if n.FamilyID != "fam-1" {
			t.Errorf("FamilyID = %q, want fam-1", n.FamilyID)
		}
		if n.Kind != core.KindBudgetAlert {
			t.Errorf("Kind = %q, want %q", n.Kind, core.KindBudgetAlert)
		}
		if !strings.Contains(n.Title, "exceeded") {
			t.Errorf("Title = %q, should mention exceeded", n.Title)
		}
		if !strings.Contains(n.Message, "200.00") || !strings.Contains(n.Message, "180.00") {
			t.Errorf("Message = %q, should include spent and limit amounts", n.Message)
		}
		if n.Payload == "" {
			t.Error("Payload should carry the raw alert JSON")
		}
		if n.Read {
			t.Error("new notification should be unread")
		}
	})

	t.Run("warning decision gets warning title", func(t *testing.T) {
		store := &fakeNotificationStore{}
		w := NewAlertWorker(store)

		warning := *msg
		warning.Decision = core.AlertWarning
		warning.SpentMinor = 15000
		warning.PctUsed = 83

		if err := w.HandleAlertMessage(context.Background(), &warning); err != nil {
			t.Fatalf("HandleAlertMessage() error = %v", err)
		}
		if len(store.saved) != 1 {
			t.Fatalf("saved %d notifications, want 1", len(store.saved))
		}
		if !strings.Contains(store.saved[0].Title, "nearing") {
			t.Errorf("Title = %q, should mention nearing the limit", store.saved[0].Title)
		}
	})

	t.Run("none decision is skipped", func(t *testing.T) {
		store := &fakeNotificationStore{}
		w := NewAlertWorker(store)

		none := *msg
		none.Decision = core.AlertNone

		if err := w.HandleAlertMessage(context.Background(), &none); err != nil {
			t.Fatalf("HandleAlertMessage() error = %v", err)
		}
		if len(store.saved) != 0 {
			t.Errorf("saved %d notifications, want 0", len(store.saved))
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := &fakeNotificationStore{saveErr: errors.New("disk full")}
		w := NewAlertWorker(store)

		if err := w.HandleAlertMessage(context.Background(), msg); err == nil {
			t.Error("HandleAlertMessage() should fail when the store fails")
		}
	})
}
