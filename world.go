package main

import "errors"

// ErrNotFound is returned when an entity id is no longer live.
// Callers must tolerate it: entities can vanish between intent and execution.
var ErrNotFound = errors.New("entity not found")

// World is the authoritative entity store. All mutation happens on the
// game goroutine; there is no locking because there is no second writer.
type World struct {
	players map[string]*Player
	mobs    map[string]*Mob
	items   map[string]*WorldItem
}

// NewWorld creates an empty entity store
func NewWorld() *World {
	return &World{
		players: make(map[string]*Player),
		mobs:    make(map[string]*Mob),
		items:   make(map[string]*WorldItem),
	}
}

// GetPlayer returns a live player by id
func (w *World) GetPlayer(id string) (*Player, error) {
	p, ok := w.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// UpsertPlayer inserts or replaces a player
func (w *World) UpsertPlayer(p *Player) {
	w.players[p.ID] = p
}

// RemovePlayer deletes a player by id
func (w *World) RemovePlayer(id string) error {
	if _, ok := w.players[id]; !ok {
		return ErrNotFound
	}
	delete(w.players, id)
	return nil
}

// GetMob returns a live mob by id
func (w *World) GetMob(id string) (*Mob, error) {
	m, ok := w.mobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// UpsertMob inserts or replaces a mob
func (w *World) UpsertMob(m *Mob) {
	w.mobs[m.ID] = m
}

// RemoveMob deletes a mob by id
func (w *World) RemoveMob(id string) error {
	if _, ok := w.mobs[id]; !ok {
		return ErrNotFound
	}
	delete(w.mobs, id)
	return nil
}

// GetItem returns a live world item by id
func (w *World) GetItem(id string) (*WorldItem, error) {
	it, ok := w.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it, nil
}

// UpsertItem inserts or replaces a world item
func (w *World) UpsertItem(it *WorldItem) {
	w.items[it.ID] = it
}

// RemoveItem deletes a world item by id
func (w *World) RemoveItem(id string) error {
	if _, ok := w.items[id]; !ok {
		return ErrNotFound
	}
	delete(w.items, id)
	return nil
}

// ForEachPlayer visits every player; fn returning false stops iteration
func (w *World) ForEachPlayer(fn func(*Player) bool) {
	for _, p := range w.players {
		if !fn(p) {
			return
		}
	}
}

// ForEachMob visits every mob; fn returning false stops iteration
func (w *World) ForEachMob(fn func(*Mob) bool) {
	for _, m := range w.mobs {
		if !fn(m) {
			return
		}
	}
}

// ForEachItem visits every item; fn returning false stops iteration
func (w *World) ForEachItem(fn func(*WorldItem) bool) {
	for _, it := range w.items {
		if !fn(it) {
			return
		}
	}
}

// PlayerCount returns the number of live players
func (w *World) PlayerCount() int { return len(w.players) }

// MobCount returns the number of live mobs
func (w *World) MobCount() int { return len(w.mobs) }

// ItemCount returns the number of live world items
func (w *World) ItemCount() int { return len(w.items) }
