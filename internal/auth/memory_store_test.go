package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInMemoryStoreSaveFindDelete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	session := Session{
		ID:        uuid.New(),
		SubjectID: "RM1",
		Method:    MethodSophia,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := store.Save(ctx, session, "h1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.FindByTokenHash(ctx, "h1")
	if err != nil {
		t.Fatalf("FindByTokenHash returned error: %v", err)
	}
	if got == nil || got.SubjectID != "RM1" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.DeleteByTokenHash(ctx, "h1"); err != nil {
		t.Fatalf("DeleteByTokenHash returned error: %v", err)
	}
	if got, _ := store.FindByTokenHash(ctx, "h1"); got != nil {
		t.Fatal("expected session to be deleted")
	}
}

func TestInMemoryStoreDeleteExpired(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	expired := Session{ID: uuid.New(), SubjectID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	live := Session{ID: uuid.New(), SubjectID: "new", ExpiresAt: time.Now().Add(time.Hour)}

	_ = store.Save(ctx, expired, "h-old")
	_ = store.Save(ctx, live, "h-new")

	removed, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed session, got %d", removed)
	}

	if got, _ := store.FindByTokenHash(ctx, "h-old"); got != nil {
		t.Fatal("expected expired session to be removed")
	}
	if got, _ := store.FindByTokenHash(ctx, "h-new"); got == nil {
		t.Fatal("expected live session to remain")
	}
}
