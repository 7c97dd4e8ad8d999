package recorder

import (
	"context"
	"sync"
	"testing"

	"github.com/keyscope/keyscope/internal/models"
)

func TestMemoryRecorderContract(t *testing.T) {
	runRecorderContract(t, NewMemoryRecorder(3))
}

func TestMemoryRecorderConcurrentCreate(t *testing.T) {
	rec := NewMemoryRecorder(1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = rec.Create(ctx, &models.CommandExecution{DatabaseID: "db", Command: "ping"})
		}()
	}
	wg.Wait()

	list, _ := rec.GetList(ctx, "db")
	if len(list) != 50 {
		t.Errorf("expected 50 records, got %d", len(list))
	}
}

func TestMemoryRecorderReturnsCopies(t *testing.T) {
	rec := NewMemoryRecorder(10)
	ctx := context.Background()

	saved, _ := rec.Create(ctx, &models.CommandExecution{DatabaseID: "db", Command: "ping"})
	saved.Command = "mutated"

	got, err := rec.GetOne(ctx, "db", saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Command != "ping" {
		t.Errorf("stored record was mutated through returned pointer: %q", got.Command)
	}
}
