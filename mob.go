package main

import (
	"math"
	"math/rand"
)

const (
	MobBaseHP      = 50
	MobBaseDamage  = 8
	MobBaseRadius  = 15.0
	MobSpeed       = 1.8 // units per tick while chasing
	MobWanderSpeed = 0.6 // units per tick while idle
	MobAggroRadius = 300.0
	MobTurnRate    = 0.15 // max radians per tick
	MobAttackTicks = 20   // cooldown between melee hits
	MobAttackReach = 4.0  // extra reach beyond radius sum
	MobWanderDrift = 0.08 // max radians the wander heading drifts per tick
)

// AIState is the mob behaviour state
type AIState int

const (
	AIIdle AIState = iota
	AIChasing
	AIAttacking
)

func (s AIState) String() string {
	switch s {
	case AIChasing:
		return "chasing"
	case AIAttacking:
		return "attacking"
	default:
		return "idle"
	}
}

// Mob is an AI-controlled enemy
type Mob struct {
	ID     string
	X, Y   float64
	Radius float64
	HP     int
	MaxHP  int
	Rarity Rarity
	Damage int

	FacingAngle float64
	State       AIState
	WanderAngle float64

	// Tick at which the mob may attack again
	AttackReadyAt uint64
}

// NewMob spawns a mob of the given rarity at a random position inside
// the world bounds, scaled by the tier multiplier
func NewMob(rarity Rarity, cfg Config) *Mob {
	mult := rarity.Mult()
	hp := int(MobBaseHP * mult)
	m := &Mob{
		ID:     GenerateID(4),
		Radius: MobBaseRadius * (1 + 0.15*float64(rarity)),
		HP:     hp,
		MaxHP:  hp,
		Rarity: rarity,
		Damage: int(MobBaseDamage * mult),
	}
	m.X, m.Y = randomMobSpawn(cfg, m.Radius)
	m.FacingAngle = rand.Float64() * 2 * math.Pi
	m.WanderAngle = m.FacingAngle
	return m
}

// randomMobSpawn picks a position inside the bounds, biased away from
// the center so mobs don't appear on top of the spawn point
func randomMobSpawn(cfg Config, radius float64) (float64, float64) {
	if cfg.WorldShape == ShapeCircle {
		cx, cy := cfg.MapRadius, cfg.MapRadius
		maxDist := cfg.MapRadius - radius
		dist := maxDist * (0.3 + 0.7*rand.Float64())
		angle := rand.Float64() * 2 * math.Pi
		return cx + dist*math.Cos(angle), cy + dist*math.Sin(angle)
	}
	x := radius + rand.Float64()*(cfg.WorldWidth-2*radius)
	y := radius + rand.Float64()*(cfg.WorldHeight-2*radius)
	return x, y
}

// Step advances one tick of AI. target is the nearest living player within
// aggro range, or nil. Returns the damage dealt to the target this tick,
// zero when no attack landed.
func (m *Mob) Step(tick uint64, target *Player, cfg Config) int {
	if target == nil {
		m.State = AIIdle
		m.wander(cfg)
		return 0
	}

	// Rotate toward the target by a bounded per-tick turn rate,
	// shortest way around
	desired := math.Atan2(target.Y-m.Y, target.X-m.X)
	m.FacingAngle = TurnToward(m.FacingAngle, desired, MobTurnRate)

	reach := m.Radius + target.Radius + MobAttackReach
	if Distance(m.X, m.Y, target.X, target.Y) <= reach {
		m.State = AIAttacking
		if tick >= m.AttackReadyAt {
			m.AttackReadyAt = tick + MobAttackTicks
			return m.Damage
		}
		return 0
	}

	m.State = AIChasing
	m.X += math.Cos(m.FacingAngle) * MobSpeed
	m.Y += math.Sin(m.FacingAngle) * MobSpeed
	m.clampToBounds(cfg)
	return 0
}

// wander drifts the heading gently and ambles forward
func (m *Mob) wander(cfg Config) {
	m.WanderAngle += (rand.Float64()*2 - 1) * MobWanderDrift
	m.FacingAngle = TurnToward(m.FacingAngle, m.WanderAngle, MobTurnRate)
	m.X += math.Cos(m.FacingAngle) * MobWanderSpeed
	m.Y += math.Sin(m.FacingAngle) * MobWanderSpeed
	m.clampToBounds(cfg)
}

func (m *Mob) clampToBounds(cfg Config) {
	if cfg.WorldShape == ShapeRect {
		m.X = Clamp(m.X, m.Radius, cfg.WorldWidth-m.Radius)
		m.Y = Clamp(m.Y, m.Radius, cfg.WorldHeight-m.Radius)
		return
	}
	cx, cy := cfg.MapRadius, cfg.MapRadius
	maxDist := cfg.MapRadius - m.Radius
	if Distance(m.X, m.Y, cx, cy) > maxDist {
		angle := math.Atan2(m.Y-cy, m.X-cx)
		m.X = cx + maxDist*math.Cos(angle)
		m.Y = cy + maxDist*math.Sin(angle)
		// Bounce the wander heading back inward
		m.WanderAngle = angle + math.Pi
	}
}

// TakeDamage reduces HP, clamping at zero, and returns true if the mob died
func (m *Mob) TakeDamage(dmg int) bool {
	if m.HP <= 0 {
		return false
	}
	m.HP -= dmg
	if m.HP <= 0 {
		m.HP = 0
		return true
	}
	return false
}

// ToState converts to protocol state
func (m *Mob) ToState() MobState {
	return MobState{
		ID:          m.ID,
		X:           round1(m.X),
		Y:           round1(m.Y),
		Radius:      m.Radius,
		Health:      m.HP,
		MaxHealth:   m.MaxHP,
		Rarity:      m.Rarity.String(),
		FacingAngle: round1(m.FacingAngle),
		State:       m.State.String(),
	}
}
