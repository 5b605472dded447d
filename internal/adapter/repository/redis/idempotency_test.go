package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_ReturnsStoredResponse(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"charge-post-1", `{"success":true}`, time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	seen, resp, err := store.CheckAndSet(ctx, "charge-post-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !seen || string(resp) != `{"success":true}` {
		t.Fatalf("expected stored response, got seen=%v resp=%s", seen, resp)
	}
}

func TestIdempotencyStore_ClaimsFreshKey(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	seen, resp, err := store.CheckAndSet(ctx, "caisse-add-7", nil, time.Minute)
	if err != nil || seen || resp != nil {
		t.Fatalf("unexpected result: seen=%v resp=%v err=%v", seen, resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"caisse-add-7").Result()
	if err != nil || val != placeholderValue {
		t.Fatalf("expected placeholder claim, got val=%q err=%v", val, err)
	}
}

func TestIdempotencyStore_UpdateThenReplay(t *testing.T) {
	client, _ := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "retrait-3", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Update(ctx, "retrait-3", []byte(`{"retrait_caisse_effectue":true}`), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	seen, resp, err := store.CheckAndSet(ctx, "retrait-3", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !seen || string(resp) != `{"retrait_caisse_effectue":true}` {
		t.Fatalf("expected final response on replay, got seen=%v resp=%s", seen, resp)
	}
}

func TestIdempotencyStore_KeyExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "expired-1", []byte(`{}`), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	seen, _, err := store.CheckAndSet(ctx, "expired-1", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if seen {
		t.Fatalf("expected expired key to be treated as fresh")
	}
}
