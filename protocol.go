package main

import "encoding/json"

// Client -> Server message types
const (
	MsgAuth           = "auth"
	MsgSetUsername    = "set_username"
	MsgMove           = "move"
	MsgOrbitControl   = "orbit_control"
	MsgPickupRequest  = "pickup_request"
	MsgEquipRequest   = "equip_request"
	MsgUnequipRequest = "unequip_request"
	MsgChatMessage    = "chat_message"
	MsgRespawnRequest = "respawn_request"
)

// Server -> Client message types
const (
	MsgAuthSuccess     = "auth_success"
	MsgAuthFailed      = "auth_failed"
	MsgWorldSnapshot   = "world_snapshot"
	MsgPlayerUpdate    = "player_update"
	MsgPlayerJoin      = "player_join"
	MsgPlayerLeave     = "player_leave"
	MsgItemsUpdate     = "items_update"
	MsgInventoryUpdate = "inventory_update"
	MsgHotbarUpdate    = "hotbar_update"
	MsgMobsUpdate      = "mobs_update"
	MsgMobDead         = "mob_dead"
	MsgPlayerDead      = "player_dead"
	MsgRespawnSuccess  = "respawn_success"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope defers payload decoding until the type is known
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// AuthMsg carries the session token issued by /login.
// Bin opts the connection into msgpack tick frames.
type AuthMsg struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Bin      bool   `json:"bin,omitempty"`
}

// AuthSuccessMsg confirms token validation
type AuthSuccessMsg struct {
	Username string `json:"username"`
}

// AuthFailedMsg explains a rejected auth attempt
type AuthFailedMsg struct {
	Reason string `json:"reason"`
}

// SetUsernameMsg claims a username; only valid right after auth_success
type SetUsernameMsg struct {
	Username string `json:"username"`
}

// MoveMsg is a movement intent. Only the direction is trusted;
// the server normalizes the vector.
type MoveMsg struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// OrbitControlMsg sets the orbit distance state: "extended", "retracted" or "neutral"
type OrbitControlMsg struct {
	State string `json:"state"`
}

// PickupRequestMsg is advisory; the pickup itself is re-validated by distance
type PickupRequestMsg struct {
	ItemID string `json:"itemId"`
}

// EquipRequestMsg moves one unit from an inventory stack to a hotbar slot
type EquipRequestMsg struct {
	Inv  int `json:"inv"`
	Slot int `json:"slot"`
}

// UnequipRequestMsg returns a hotbar item to the inventory
type UnequipRequestMsg struct {
	Slot int `json:"slot"`
}

// ChatMsg carries chat both ways; Username is filled by the server
type ChatMsg struct {
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

// StackState is one inventory stack on the wire
type StackState struct {
	Name   string `json:"name" msgpack:"n"`
	Rarity string `json:"rarity" msgpack:"r"`
	Count  int    `json:"count" msgpack:"c"`
}

// HotbarState is one hotbar slot; a nil entry means the slot is empty
type HotbarState struct {
	Name   string `json:"name" msgpack:"n"`
	Rarity string `json:"rarity" msgpack:"r"`
	Ready  bool   `json:"ready" msgpack:"rd"`
}

// PlayerState is broadcast per player each tick
type PlayerState struct {
	ID          string         `json:"id" msgpack:"id"`
	Username    string         `json:"username" msgpack:"u"`
	X           float64        `json:"x" msgpack:"x"`
	Y           float64        `json:"y" msgpack:"y"`
	Radius      float64        `json:"radius" msgpack:"rad"`
	Health      int            `json:"health" msgpack:"hp"`
	MaxHealth   int            `json:"maxHealth" msgpack:"mhp"`
	FacingAngle float64        `json:"facingAngle" msgpack:"fa"`
	OrbitAngle  float64        `json:"orbitAngle" msgpack:"oa"`
	OrbitDist   float64        `json:"orbitDist" msgpack:"od"`
	Alive       bool           `json:"alive" msgpack:"a"`
	Hotbar      []*HotbarState `json:"hotbar" msgpack:"hb"`
}

// ItemState is broadcast per world item
type ItemState struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"name" msgpack:"n"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"rad"`
	Rarity string  `json:"rarity,omitempty" msgpack:"r"`
}

// MobState is broadcast per mob
type MobState struct {
	ID          string  `json:"id" msgpack:"id"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	Radius      float64 `json:"radius" msgpack:"rad"`
	Health      int     `json:"health" msgpack:"hp"`
	MaxHealth   int     `json:"maxHealth" msgpack:"mhp"`
	Rarity      string  `json:"rarity" msgpack:"r"`
	FacingAngle float64 `json:"facingAngle" msgpack:"fa"`
	State       string  `json:"state" msgpack:"st"`
}

// WorldSnapshotMsg is the full state sent once on join
type WorldSnapshotMsg struct {
	Shape     string         `json:"shape"`
	MapRadius float64        `json:"mapRadius,omitempty"`
	Width     float64        `json:"width,omitempty"`
	Height    float64        `json:"height,omitempty"`
	TickRate  int            `json:"tickRate"`
	Tick      uint64         `json:"tick"`
	Self      PlayerState    `json:"self"`
	Players   []PlayerState  `json:"players"`
	Items     []ItemState    `json:"items"`
	Mobs      []MobState     `json:"mobs"`
	Inventory []StackState   `json:"inventory"`
	Hotbar    []*HotbarState `json:"hotbar"`
}

// PlayerLeaveMsg announces a departed player
type PlayerLeaveMsg struct {
	ID string `json:"id"`
}

// MobDeadMsg tells clients to stop predicting a removed mob
type MobDeadMsg struct {
	ID string `json:"id"`
}

// PlayerDeadMsg is sent to a player whose health reached zero
type PlayerDeadMsg struct {
	ID string `json:"id"`
}

// RespawnSuccessMsg restores a dead player's client view
type RespawnSuccessMsg struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
}

// InventoryUpdateMsg pushes the full inventory after a change
type InventoryUpdateMsg struct {
	Inventory []StackState `json:"inventory"`
}

// HotbarUpdateMsg pushes the full hotbar after a change
type HotbarUpdateMsg struct {
	Hotbar []*HotbarState `json:"hotbar"`
}

// ItemsUpdateMsg carries the live item list when it changed
type ItemsUpdateMsg struct {
	Items []ItemState `json:"items"`
}

// TickUpdate is the compact binary form of one tick's broadcasts,
// sent as a single msgpack frame to clients that opted in via auth{bin:true}.
// Items is nil when the item set did not change this tick.
type TickUpdate struct {
	Tick    uint64        `msgpack:"t"`
	Players []PlayerState `msgpack:"p"`
	Mobs    []MobState    `msgpack:"m"`
	Items   []ItemState   `msgpack:"i,omitempty"`
}
