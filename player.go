package main

import "math"

const (
	PlayerRadius = 10.0
	PlayerMaxHP  = 100
	PlayerSpeed  = 3.0 // units per tick

	// Orbit distances from the player center, added to the radius
	OrbitRetracted = 8.0
	OrbitNeutral   = 25.0
	OrbitExtended  = 45.0
	OrbitStep      = 0.1 // radians advanced per tick
)

// OrbitState is the held-button orbit control
type OrbitState int

const (
	OrbitStateNeutral OrbitState = iota
	OrbitStateExtended
	OrbitStateRetracted
)

// ParseOrbitState maps the wire value to a state; unknown values read as neutral
func ParseOrbitState(s string) OrbitState {
	switch s {
	case "extended":
		return OrbitStateExtended
	case "retracted":
		return OrbitStateRetracted
	default:
		return OrbitStateNeutral
	}
}

// Player is the server-side entity for one connected user
type Player struct {
	ID       string
	Username string
	X, Y     float64
	Radius   float64
	Speed    float64
	HP       int
	MaxHP    int
	Alive    bool
	IsAdmin  bool

	FacingAngle float64
	OrbitAngle  float64
	OrbitState  OrbitState

	// Last accepted movement direction, already normalized; zero when idle
	MoveDX, MoveDY float64

	Inventory []InventoryStack
	Hotbar    []*EquippedItem

	// Chat flood control, tick based
	chatCount   int
	chatResetAt uint64
}

// NewPlayer creates a player entity for a claimed username
func NewPlayer(id, username string, cfg Config) *Player {
	x, y := spawnPoint(cfg)
	return &Player{
		ID:        id,
		Username:  username,
		X:         x,
		Y:         y,
		Radius:    PlayerRadius,
		Speed:     PlayerSpeed,
		HP:        PlayerMaxHP,
		MaxHP:     PlayerMaxHP,
		Alive:     true,
		Inventory: make([]InventoryStack, 0, cfg.InventorySize),
		Hotbar:    make([]*EquippedItem, cfg.HotbarSize),
	}
}

// spawnPoint picks a spawn position near the world center
func spawnPoint(cfg Config) (float64, float64) {
	w, h := cfg.Bounds()
	return w / 2, h / 2
}

// SetMove records a movement intent. Client magnitudes are not trusted
// beyond direction: the vector is normalized to unit length.
func (p *Player) SetMove(dx, dy float64) {
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag == 0 {
		p.MoveDX = 0
		p.MoveDY = 0
		return
	}
	p.MoveDX = dx / mag
	p.MoveDY = dy / mag
}

// Step integrates one tick of movement and orbit for the player
func (p *Player) Step(cfg Config) {
	if p.Alive && (p.MoveDX != 0 || p.MoveDY != 0) {
		p.X += p.MoveDX * p.Speed
		p.Y += p.MoveDY * p.Speed
		p.FacingAngle = math.Atan2(p.MoveDY, p.MoveDX)
		p.clampToBounds(cfg)
	}

	p.OrbitAngle += OrbitStep
	if p.OrbitAngle > 2*math.Pi {
		p.OrbitAngle -= 2 * math.Pi
	}
}

// clampToBounds keeps the player inside the world per the shape policy
func (p *Player) clampToBounds(cfg Config) {
	if cfg.WorldShape == ShapeRect {
		p.X = Clamp(p.X, p.Radius, cfg.WorldWidth-p.Radius)
		p.Y = Clamp(p.Y, p.Radius, cfg.WorldHeight-p.Radius)
		return
	}
	// Circular: project onto the boundary along the angle from center
	cx, cy := cfg.MapRadius, cfg.MapRadius
	maxDist := cfg.MapRadius - p.Radius
	if Distance(p.X, p.Y, cx, cy) > maxDist {
		angle := math.Atan2(p.Y-cy, p.X-cx)
		p.X = cx + maxDist*math.Cos(angle)
		p.Y = cy + maxDist*math.Sin(angle)
	}
}

// OrbitDist returns the current item orbit distance from the player center
func (p *Player) OrbitDist() float64 {
	switch p.OrbitState {
	case OrbitStateExtended:
		return p.Radius + OrbitExtended
	case OrbitStateRetracted:
		return p.Radius + OrbitRetracted
	default:
		return p.Radius + OrbitNeutral
	}
}

// EquippedCount returns the number of occupied hotbar slots
func (p *Player) EquippedCount() int {
	n := 0
	for _, s := range p.Hotbar {
		if s != nil {
			n++
		}
	}
	return n
}

// OrbitSlotPos returns the world position of the orbitIdx-th occupied
// hotbar slot. Occupied slots are spread evenly around the orbit circle.
func (p *Player) OrbitSlotPos(orbitIdx, equipped int) (float64, float64) {
	if equipped == 0 {
		return p.X, p.Y
	}
	angle := p.OrbitAngle + float64(orbitIdx)*(2*math.Pi/float64(equipped))
	dist := p.OrbitDist()
	return p.X + dist*math.Cos(angle), p.Y + dist*math.Sin(angle)
}

// TakeDamage reduces HP and returns true if the player died
func (p *Player) TakeDamage(dmg int) bool {
	if !p.Alive {
		return false
	}
	p.HP -= dmg
	if p.HP <= 0 {
		p.HP = 0
		p.Alive = false
		return true
	}
	return false
}

// Respawn resets a dead player at the spawn point with full health
func (p *Player) Respawn(cfg Config) {
	p.X, p.Y = spawnPoint(cfg)
	p.HP = p.MaxHP
	p.Alive = true
	p.MoveDX = 0
	p.MoveDY = 0
}

// ToState converts to protocol state
func (p *Player) ToState(tick uint64) PlayerState {
	hotbar := make([]*HotbarState, len(p.Hotbar))
	for i, s := range p.Hotbar {
		if s == nil {
			continue
		}
		hotbar[i] = &HotbarState{
			Name:   s.Item.Name,
			Rarity: s.Item.Rarity.String(),
			Ready:  tick >= s.ReadyAt,
		}
	}
	return PlayerState{
		ID:          p.ID,
		Username:    p.Username,
		X:           round1(p.X),
		Y:           round1(p.Y),
		Radius:      p.Radius,
		Health:      p.HP,
		MaxHealth:   p.MaxHP,
		FacingAngle: round1(p.FacingAngle),
		OrbitAngle:  round1(p.OrbitAngle),
		OrbitDist:   round1(p.OrbitDist()),
		Alive:       p.Alive,
		Hotbar:      hotbar,
	}
}
