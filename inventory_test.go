package main

import "testing"

func TestAddToInventoryMergesStacks(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	ref := ItemRef{Name: "Petal", Rarity: RarityCommon}

	for i := 0; i < 3; i++ {
		if err := AddToInventory(p, ref, cfg.InventorySize); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if len(p.Inventory) != 1 {
		t.Fatalf("expected 1 stack, got %d", len(p.Inventory))
	}
	if p.Inventory[0].Count != 3 {
		t.Errorf("expected count 3, got %d", p.Inventory[0].Count)
	}

	// Different rarity does not merge
	if err := AddToInventory(p, ItemRef{Name: "Petal", Rarity: RarityRare}, cfg.InventorySize); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(p.Inventory) != 2 {
		t.Errorf("expected 2 stacks, got %d", len(p.Inventory))
	}
}

func TestAddToInventoryFull(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	for i := 0; i < cfg.InventorySize; i++ {
		ref := ItemRef{Name: "Petal", Rarity: Rarity(i % 6)}
		if i >= 6 {
			ref.Name = "Leaf"
		}
		if err := AddToInventory(p, ref, cfg.InventorySize); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	err := AddToInventory(p, ItemRef{Name: "Stinger", Rarity: RarityMythic}, cfg.InventorySize)
	if err != ErrInventoryFull {
		t.Errorf("expected ErrInventoryFull, got %v", err)
	}
	// A merge into an existing stack still works when full
	if err := AddToInventory(p, ItemRef{Name: "Petal", Rarity: RarityCommon}, cfg.InventorySize); err != nil {
		t.Errorf("merge into existing stack should succeed: %v", err)
	}
}

func TestEquipUnequipRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	ref := ItemRef{Name: "Rose", Rarity: RarityRare}
	AddToInventory(p, ref, cfg.InventorySize)

	if err := Equip(p, 0, 2, cfg.InventorySize, 0); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if len(p.Inventory) != 0 {
		t.Error("single-unit stack should vanish after equip")
	}
	if p.Hotbar[2] == nil || p.Hotbar[2].Item != ref {
		t.Error("hotbar slot 2 should hold the rose")
	}

	if err := Unequip(p, 2, cfg.InventorySize); err != nil {
		t.Fatalf("unequip: %v", err)
	}
	if p.Hotbar[2] != nil {
		t.Error("slot should be empty after unequip")
	}
	if len(p.Inventory) != 1 || p.Inventory[0].Item != ref || p.Inventory[0].Count != 1 {
		t.Error("item should be back in the inventory")
	}
}

func TestEquipTakesOneUnit(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	ref := ItemRef{Name: "Petal", Rarity: RarityCommon}
	AddToInventory(p, ref, cfg.InventorySize)
	AddToInventory(p, ref, cfg.InventorySize)

	if err := Equip(p, 0, 0, cfg.InventorySize, 0); err != nil {
		t.Fatalf("equip: %v", err)
	}
	if p.Inventory[0].Count != 1 {
		t.Errorf("expected 1 unit left, got %d", p.Inventory[0].Count)
	}
}

func TestEquipDisplacesOccupant(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	rose := ItemRef{Name: "Rose", Rarity: RarityCommon}
	rock := ItemRef{Name: "Rock", Rarity: RarityCommon}
	AddToInventory(p, rose, cfg.InventorySize)
	AddToInventory(p, rock, cfg.InventorySize)

	if err := Equip(p, 0, 0, cfg.InventorySize, 0); err != nil {
		t.Fatalf("equip rose: %v", err)
	}
	// rock is now at index 0
	if err := Equip(p, 0, 0, cfg.InventorySize, 0); err != nil {
		t.Fatalf("equip rock: %v", err)
	}
	if p.Hotbar[0].Item != rock {
		t.Error("slot should hold the rock")
	}
	if len(p.Inventory) != 1 || p.Inventory[0].Item != rose {
		t.Error("displaced rose should be back in the inventory")
	}
}

func TestEquipInvalidIndices(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	AddToInventory(p, ItemRef{Name: "Petal"}, cfg.InventorySize)

	if err := Equip(p, -1, 0, cfg.InventorySize, 0); err != ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if err := Equip(p, cfg.InventorySize, 0, cfg.InventorySize, 0); err != ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex past capacity, got %v", err)
	}
	if err := Equip(p, 5, 0, cfg.InventorySize, 0); err != ErrEmptySource {
		t.Errorf("expected ErrEmptySource for a vacant stack index, got %v", err)
	}
	if err := Equip(p, 0, cfg.HotbarSize, cfg.InventorySize, 0); err != ErrInvalidIndex {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if err := Unequip(p, 0, cfg.InventorySize); err != ErrEmptySlot {
		t.Errorf("expected ErrEmptySlot, got %v", err)
	}
}

func TestEquipSameStackTwiceSingleUnit(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	ref := ItemRef{Name: "Stinger", Rarity: RarityCommon}
	AddToInventory(p, ref, cfg.InventorySize)

	// Two requests for the same single-unit stack: exactly one succeeds
	err1 := Equip(p, 0, 0, cfg.InventorySize, 0)
	err2 := Equip(p, 0, 1, cfg.InventorySize, 0)
	if err1 != nil {
		t.Fatalf("first equip: %v", err1)
	}
	if err2 != ErrEmptySource {
		t.Fatalf("second equip should see an empty source, got %v", err2)
	}
	if p.Hotbar[1] != nil {
		t.Error("no item should be duplicated")
	}
	if p.EquippedCount() != 1 || len(p.Inventory) != 0 {
		t.Error("exactly one unit should exist, equipped")
	}
}

func TestEquipRollbackOnFullInventory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InventorySize = 2
	p := NewPlayer("p1", "alice", cfg)
	rose := ItemRef{Name: "Rose", Rarity: RarityCommon}
	rock := ItemRef{Name: "Rock", Rarity: RarityCommon}
	leaf := ItemRef{Name: "Leaf", Rarity: RarityCommon}

	// Slot 0 holds a rose; inventory is two full stacks of other items
	p.Hotbar[0] = &EquippedItem{Item: rose}
	AddToInventory(p, rock, cfg.InventorySize)
	AddToInventory(p, rock, cfg.InventorySize)
	AddToInventory(p, leaf, cfg.InventorySize)

	// Equipping a rock would displace the rose, which has nowhere to go
	err := Equip(p, 0, 0, cfg.InventorySize, 0)
	if err != ErrInventoryFull {
		t.Fatalf("expected ErrInventoryFull, got %v", err)
	}
	// Everything rolled back
	if p.Hotbar[0].Item != rose {
		t.Error("rose should still be equipped")
	}
	if p.Inventory[0].Item != rock || p.Inventory[0].Count != 2 {
		t.Error("rock stack should be untouched")
	}
	if p.Inventory[1].Item != leaf || p.Inventory[1].Count != 1 {
		t.Error("leaf stack should be untouched")
	}
}

func TestEquipStartsReloading(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	ref := ItemRef{Name: "Stinger", Rarity: RarityCommon}
	AddToInventory(p, ref, cfg.InventorySize)

	if err := Equip(p, 0, 0, cfg.InventorySize, 100); err != nil {
		t.Fatalf("equip: %v", err)
	}
	want := uint64(100) + ref.Def().ReloadTicks
	if p.Hotbar[0].ReadyAt != want {
		t.Errorf("fresh equip should reload first: ReadyAt = %d, want %d", p.Hotbar[0].ReadyAt, want)
	}
}
