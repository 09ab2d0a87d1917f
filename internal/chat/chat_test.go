package chat

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	chats, errNew := store.NewCollection(filepath.Join(t.TempDir(), "chats.json"), func(c models.Chat) string { return c.ID })
	if errNew != nil {
		t.Fatalf("new collection: %v", errNew)
	}
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	return NewService(chats, func() time.Time { return now })
}

func TestCreateAndListByUser(t *testing.T) {
	svc := newTestService(t)

	msgs := []models.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}
	created, errCreate := svc.Create("u1", msgs)
	if errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, errCreate := svc.Create("u2", msgs); errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	mine := svc.ByUser("u1")
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("expected only u1's chat, got %+v", mine)
	}
	if got := len(svc.All()); got != 2 {
		t.Fatalf("expected 2 chats total, got %d", got)
	}
}

func TestAppendMessageRewritesRecord(t *testing.T) {
	svc := newTestService(t)
	created, errCreate := svc.Create("u1", []models.Message{{Role: "user", Content: "hi"}})
	if errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	updated, errAppend := svc.AppendMessage(created.ID, models.Message{Role: "assistant", Content: "hello"})
	if errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(updated.Messages))
	}

	got, errGet := svc.Get(created.ID)
	if errGet != nil {
		t.Fatalf("get: %v", errGet)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "hello" {
		t.Fatalf("expected appended message persisted, got %+v", got.Messages)
	}
}

func TestAppendMessageUnknownChat(t *testing.T) {
	svc := newTestService(t)
	if _, errAppend := svc.AppendMessage("nope", models.Message{Role: "user", Content: "hi"}); !errors.Is(errAppend, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errAppend)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	created, errCreate := svc.Create("u1", []models.Message{{Role: "user", Content: "hi"}})
	if errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	if errDelete := svc.Delete(created.ID); errDelete != nil {
		t.Fatalf("delete: %v", errDelete)
	}
	if errDelete := svc.Delete(created.ID); errDelete != nil {
		t.Fatalf("delete absent: %v", errDelete)
	}
	if _, errGet := svc.Get(created.ID); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errGet)
	}
}
