package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/roadbuddy/quizbot/internal/model"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.GetOrCreate(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if first.Phase != model.PhaseOnboarding || first.ID == 0 {
		t.Fatalf("new user = %+v", first)
	}
	second, _ := s.GetOrCreate(ctx, 42)
	if second.ID != first.ID {
		t.Fatalf("second create returned id %d, want %d", second.ID, first.ID)
	}
}

func TestSaveAndIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, _ := s.GetOrCreate(ctx, 1)

	u.CorrectCount = 5
	if got, _ := s.Get(1); got.CorrectCount != 0 {
		t.Fatal("store shares memory with callers")
	}
	if err := s.Save(ctx, u); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(1); got.CorrectCount != 5 {
		t.Fatalf("saved correct = %d", got.CorrectCount)
	}

	if err := s.Save(ctx, model.NewUser(99)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
