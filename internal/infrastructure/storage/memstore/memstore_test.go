package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/99minutos/library-catalog/internal/core/ports"
)

func TestStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := []byte("abc")
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'z'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("expected stored copy, got %s", got)
	}
	got[1] = 'z'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("expected Get to return a copy, got %s", again)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ports.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}
