package store

import (
	"context"
	"os"
	"testing"

	"github.com/rushteam/embedrec/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want store not found", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want %q", got, "v")
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after Delete error = %v, want store not found", err)
	}
}

func TestMemoryStore_Batch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}
	got, err := s.BatchGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet() = %v", got)
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

// TestRedisStore 需要真实的 Redis 服务，通过 REDIS_ADDR 指定地址。
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("需要设置 REDIS_ADDR 连接真实的 Redis 服务才能运行")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	key := "embedrec:test:key"
	defer s.Delete(ctx, key)

	if err := s.Set(ctx, key, []byte("payload"), 60); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Get() = %q, want %q", got, "payload")
	}
	if _, err := s.Get(ctx, key+":missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v, want store not found", err)
	}
}
