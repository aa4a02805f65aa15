package main

import "testing"

func TestWorldPlayerLifecycle(t *testing.T) {
	w := NewWorld()
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	if _, err := w.GetPlayer("p1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	w.UpsertPlayer(p)
	got, err := w.GetPlayer("p1")
	if err != nil || got != p {
		t.Error("expected to get the inserted player back")
	}
	if w.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", w.PlayerCount())
	}

	if err := w.RemovePlayer("p1"); err != nil {
		t.Errorf("remove: %v", err)
	}
	if err := w.RemovePlayer("p1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on double remove, got %v", err)
	}
}

func TestWorldMobAndItemNotFound(t *testing.T) {
	w := NewWorld()
	if _, err := w.GetMob("x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := w.GetItem("x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := w.RemoveMob("x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := w.RemoveItem("x"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWorldForEachEarlyStop(t *testing.T) {
	w := NewWorld()
	cfg := DefaultConfig()
	for _, id := range []string{"a", "b", "c"} {
		w.UpsertPlayer(NewPlayer(id, id, cfg))
	}

	visited := 0
	w.ForEachPlayer(func(p *Player) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("expected iteration to stop after 1, visited %d", visited)
	}
}

func TestWorldUpsertReplaces(t *testing.T) {
	w := NewWorld()
	cfg := DefaultConfig()
	w.UpsertPlayer(NewPlayer("p1", "alice", cfg))
	replacement := NewPlayer("p1", "alice2", cfg)
	w.UpsertPlayer(replacement)

	got, _ := w.GetPlayer("p1")
	if got != replacement {
		t.Error("upsert should replace the existing entity")
	}
	if w.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", w.PlayerCount())
	}
}
