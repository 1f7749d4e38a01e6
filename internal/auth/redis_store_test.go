package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test:session:"), m
}

func TestRedisStoreSaveFindDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	session := Session{
		ID:          uuid.New(),
		SubjectID:   "RM1234",
		SubjectName: "Maria Silva",
		Method:      MethodSophia,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	if err := store.Save(ctx, session, "hash-1"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.FindByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindByTokenHash returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored session")
	}
	if got.SubjectID != session.SubjectID || got.Method != session.Method {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.DeleteByTokenHash(ctx, "hash-1"); err != nil {
		t.Fatalf("DeleteByTokenHash returned error: %v", err)
	}

	got, err = store.FindByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindByTokenHash returned error: %v", err)
	}
	if got != nil {
		t.Fatal("expected session to be gone after delete")
	}
}

func TestRedisStoreMissReturnsNil(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.FindByTokenHash(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("FindByTokenHash returned error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown hash")
	}
}

func TestRedisStoreExpiresWithTTL(t *testing.T) {
	store, m := newTestRedisStore(t)
	ctx := context.Background()

	session := Session{
		ID:        uuid.New(),
		SubjectID: "RM1",
		Method:    MethodGoogle,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Second),
	}

	if err := store.Save(ctx, session, "hash-ttl"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	m.FastForward(2 * time.Second)

	got, err := store.FindByTokenHash(ctx, "hash-ttl")
	if err != nil {
		t.Fatalf("FindByTokenHash returned error: %v", err)
	}
	if got != nil {
		t.Fatal("expected session to expire with the redis TTL")
	}
}
