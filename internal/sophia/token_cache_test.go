package sophia

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSource) Authenticate(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	return fmt.Sprintf("token-%d", f.calls), nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSystemTokenReusesCachedValueWithinTTL(t *testing.T) {
	source := &fakeSource{}
	cache := NewTokenCache(source, time.Hour)

	first, err := cache.SystemToken(context.Background())
	if err != nil {
		t.Fatalf("SystemToken returned error: %v", err)
	}

	second, err := cache.SystemToken(context.Background())
	if err != nil {
		t.Fatalf("SystemToken returned error: %v", err)
	}

	if first != second {
		t.Fatalf("expected cached token to be reused, got %q then %q", first, second)
	}
	if source.callCount() != 1 {
		t.Fatalf("expected one upstream call, got %d", source.callCount())
	}
}

func TestSystemTokenRefreshesAfterExpiry(t *testing.T) {
	source := &fakeSource{}
	cache := NewTokenCache(source, 30*time.Minute)

	current := time.Unix(1_700_000_000, 0)
	cache.now = func() time.Time { return current }

	first, err := cache.SystemToken(context.Background())
	if err != nil {
		t.Fatalf("SystemToken returned error: %v", err)
	}

	current = current.Add(31 * time.Minute)

	second, err := cache.SystemToken(context.Background())
	if err != nil {
		t.Fatalf("SystemToken returned error: %v", err)
	}

	if first == second {
		t.Fatalf("expected a fresh token after expiry, got %q twice", first)
	}
	if source.callCount() != 2 {
		t.Fatalf("expected two upstream calls, got %d", source.callCount())
	}
}

func TestSystemTokenPropagatesUpstreamError(t *testing.T) {
	wantErr := errors.New("upstream down")
	source := &fakeSource{err: wantErr}
	cache := NewTokenCache(source, time.Hour)

	if _, err := cache.SystemToken(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSystemTokenConcurrentCallersShareOneRefresh(t *testing.T) {
	source := &fakeSource{}
	cache := NewTokenCache(source, time.Hour)

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := cache.SystemToken(context.Background())
			if err != nil {
				t.Errorf("SystemToken returned error: %v", err)
				return
			}
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		if token != tokens[0] {
			t.Fatalf("expected all callers to observe the same token, got %v", tokens)
		}
	}
	if source.callCount() != 1 {
		t.Fatalf("expected a single upstream call, got %d", source.callCount())
	}
}

func TestInvalidateForcesRefresh(t *testing.T) {
	source := &fakeSource{}
	cache := NewTokenCache(source, time.Hour)

	first, _ := cache.SystemToken(context.Background())
	cache.Invalidate()
	second, _ := cache.SystemToken(context.Background())

	if first == second {
		t.Fatalf("expected refresh after Invalidate, got %q twice", first)
	}
}
