package main

import (
	"math"
	"testing"
)

func TestNewPlayer(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	if p.ID != "p1" {
		t.Errorf("expected ID p1, got %s", p.ID)
	}
	if p.Username != "alice" {
		t.Errorf("expected username alice, got %s", p.Username)
	}
	if p.HP != PlayerMaxHP {
		t.Errorf("expected HP %d, got %d", PlayerMaxHP, p.HP)
	}
	if !p.Alive {
		t.Error("expected player to be alive")
	}
	if len(p.Hotbar) != cfg.HotbarSize {
		t.Errorf("expected %d hotbar slots, got %d", cfg.HotbarSize, len(p.Hotbar))
	}
	if len(p.Inventory) != 0 {
		t.Errorf("expected empty inventory, got %d stacks", len(p.Inventory))
	}
}

func TestPlayerSetMoveNormalizes(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	p.SetMove(3, 4)
	mag := math.Sqrt(p.MoveDX*p.MoveDX + p.MoveDY*p.MoveDY)
	if math.Abs(mag-1) > 1e-9 {
		t.Errorf("expected unit direction, got magnitude %f", mag)
	}

	// Oversized client vectors get the same unit direction
	p2 := NewPlayer("p2", "bob", cfg)
	p2.SetMove(3000, 4000)
	if math.Abs(p.MoveDX-p2.MoveDX) > 1e-9 || math.Abs(p.MoveDY-p2.MoveDY) > 1e-9 {
		t.Error("direction should not depend on magnitude")
	}

	p.SetMove(0, 0)
	if p.MoveDX != 0 || p.MoveDY != 0 {
		t.Error("zero vector should stop movement")
	}
}

func TestPlayerStepMovesAtFixedSpeed(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	startX := p.X

	p.SetMove(1, 0)
	for i := 0; i < 10; i++ {
		p.Step(cfg)
	}

	moved := p.X - startX
	if math.Abs(moved-10*PlayerSpeed) > 1e-9 {
		t.Errorf("expected to move %f east, moved %f", 10*PlayerSpeed, moved)
	}
	if p.FacingAngle != 0 {
		t.Errorf("expected facing east (0), got %f", p.FacingAngle)
	}
}

func TestPlayerFacingRetainedWhenIdle(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	p.SetMove(0, 1)
	p.Step(cfg)
	facing := p.FacingAngle

	p.SetMove(0, 0)
	p.Step(cfg)
	if p.FacingAngle != facing {
		t.Error("facing should not change while idle")
	}
}

func TestPlayerClampCircle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldShape = ShapeCircle
	cfg.MapRadius = 500

	p := NewPlayer("p1", "alice", cfg)
	p.SetMove(1, 0)
	for i := 0; i < 1000; i++ {
		p.Step(cfg)
	}

	cx, cy := cfg.MapRadius, cfg.MapRadius
	d := Distance(p.X, p.Y, cx, cy)
	if d > cfg.MapRadius-p.Radius+1e-9 {
		t.Errorf("player escaped circle: dist %f, max %f", d, cfg.MapRadius-p.Radius)
	}
}

func TestPlayerClampRect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldShape = ShapeRect
	cfg.WorldWidth = 400
	cfg.WorldHeight = 400

	p := NewPlayer("p1", "alice", cfg)
	// Move diagonally into the corner; each axis clamps independently
	p.SetMove(1, 1)
	for i := 0; i < 500; i++ {
		p.Step(cfg)
	}

	if p.X != cfg.WorldWidth-p.Radius {
		t.Errorf("expected X clamped to %f, got %f", cfg.WorldWidth-p.Radius, p.X)
	}
	if p.Y != cfg.WorldHeight-p.Radius {
		t.Errorf("expected Y clamped to %f, got %f", cfg.WorldHeight-p.Radius, p.Y)
	}
}

func TestPlayerTakeDamage(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	died := p.TakeDamage(30)
	if died {
		t.Error("should not have died from 30 damage")
	}
	if p.HP != PlayerMaxHP-30 {
		t.Errorf("expected HP %d, got %d", PlayerMaxHP-30, p.HP)
	}

	died = p.TakeDamage(1000)
	if !died {
		t.Error("should have died")
	}
	if p.Alive {
		t.Error("expected player to be dead")
	}
	if p.HP != 0 {
		t.Errorf("expected HP 0, got %d", p.HP)
	}

	// Dead players take no further damage
	if p.TakeDamage(10) {
		t.Error("dead player should not die twice")
	}
}

func TestPlayerRespawn(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	p.TakeDamage(1000)
	p.X = 17
	p.Y = 17

	p.Respawn(cfg)
	if !p.Alive {
		t.Error("expected player to be alive after respawn")
	}
	if p.HP != p.MaxHP {
		t.Errorf("expected full HP, got %d", p.HP)
	}
	sx, sy := spawnPoint(cfg)
	if p.X != sx || p.Y != sy {
		t.Error("expected respawn at spawn point")
	}
}

func TestPlayerOrbitDist(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)

	p.OrbitState = OrbitStateNeutral
	neutral := p.OrbitDist()
	p.OrbitState = OrbitStateExtended
	extended := p.OrbitDist()
	p.OrbitState = OrbitStateRetracted
	retracted := p.OrbitDist()

	if !(retracted < neutral && neutral < extended) {
		t.Errorf("expected retracted < neutral < extended, got %f %f %f", retracted, neutral, extended)
	}
}

func TestPlayerOrbitSlotSpread(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	p.OrbitAngle = 0

	// Two equipped items sit on opposite sides of the orbit
	x0, y0 := p.OrbitSlotPos(0, 2)
	x1, y1 := p.OrbitSlotPos(1, 2)

	mx, my := (x0+x1)/2, (y0+y1)/2
	if math.Abs(mx-p.X) > 1e-9 || math.Abs(my-p.Y) > 1e-9 {
		t.Error("opposite slots should be centered on the player")
	}
	if math.Abs(Distance(x0, y0, p.X, p.Y)-p.OrbitDist()) > 1e-9 {
		t.Error("slot should sit at the orbit distance")
	}
}

func TestPlayerToStateHotbarReady(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPlayer("p1", "alice", cfg)
	p.Hotbar[0] = &EquippedItem{Item: ItemRef{Name: "Petal"}, ReadyAt: 100}

	s := p.ToState(50)
	if s.Hotbar[0] == nil || s.Hotbar[0].Ready {
		t.Error("item should be reloading at tick 50")
	}
	s = p.ToState(100)
	if !s.Hotbar[0].Ready {
		t.Error("item should be ready at tick 100")
	}
	if s.Hotbar[1] != nil {
		t.Error("empty slot should stay nil")
	}
}

func TestParseOrbitState(t *testing.T) {
	if ParseOrbitState("extended") != OrbitStateExtended {
		t.Error("expected extended")
	}
	if ParseOrbitState("retracted") != OrbitStateRetracted {
		t.Error("expected retracted")
	}
	if ParseOrbitState("bogus") != OrbitStateNeutral {
		t.Error("unknown values should read as neutral")
	}
}
