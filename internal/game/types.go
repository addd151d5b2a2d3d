// Package game implements the session engine: the per-game turn state
// machine, tile accounting, and the orchestration entry points the HTTP
// boundary calls into.
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tinytiles/internal/board"
	"tinytiles/internal/tiles"
)

// Invitation statuses.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
)

// Player is a directory entry. The engine treats players as opaque ids;
// the bookkeeping columns come from the directory schema and nothing in
// the engine writes them.
type Player struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Token        string    `json:"-"`
	OverallScore int       `json:"overallScore"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	GameCount    int       `json:"gameCount"`
	LastLogin    time.Time `json:"lastLogin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Invitation is the handoff record that authorizes game creation. It
// transitions to accepted exactly once, and that transition is what
// creates the session.
type Invitation struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TurnRecord is the state of one player's turn.
type TurnRecord struct {
	ID            uuid.UUID
	GameID        uuid.UUID
	IsCreatorTurn bool
	StartRack     []tiles.Tile
	PlayedTiles   []board.Placement
	TurnScore     int
	RackAfter     []tiles.Tile
	DrawnAfter    []tiles.Tile
	TurnEnded     bool
	CreatedAt     time.Time
	LastModified  time.Time
}

// Clone returns a deep copy of the turn record.
func (t *TurnRecord) Clone() *TurnRecord {
	n := *t
	n.StartRack = tiles.Clone(t.StartRack)
	n.RackAfter = tiles.Clone(t.RackAfter)
	n.DrawnAfter = tiles.Clone(t.DrawnAfter)
	n.PlayedTiles = clonePlacements(t.PlayedTiles)
	return &n
}

// Game is the session aggregate. All reads and writes of its mutable
// state happen under mu; the registry hands out one aggregate per game
// id so the mutex is the game's single mutation authority.
type Game struct {
	mu sync.Mutex

	ID           uuid.UUID
	CreatorID    uuid.UUID
	JoinerID     uuid.UUID
	InvitationID uuid.UUID

	Board   *board.Board
	Pending []board.Placement

	CreatorRack []tiles.Tile
	JoinerRack  []tiles.Tile
	CreatorBag  *tiles.Bag
	JoinerBag   *tiles.Bag

	TurnCounter  int
	Started      bool
	ActiveTurnID uuid.UUID
	Turns        map[uuid.UUID]*TurnRecord

	CreatedAt time.Time
	LastSeen  time.Time
}

// Clone returns a deep copy with a fresh mutex. Used to compute an
// end-turn transition off to the side and to hand copies to stores.
func (g *Game) Clone() *Game {
	n := &Game{
		ID:           g.ID,
		CreatorID:    g.CreatorID,
		JoinerID:     g.JoinerID,
		InvitationID: g.InvitationID,
		Board:        g.Board.Copy(),
		Pending:      clonePlacements(g.Pending),
		CreatorRack:  tiles.Clone(g.CreatorRack),
		JoinerRack:   tiles.Clone(g.JoinerRack),
		TurnCounter:  g.TurnCounter,
		Started:      g.Started,
		ActiveTurnID: g.ActiveTurnID,
		Turns:        make(map[uuid.UUID]*TurnRecord, len(g.Turns)),
		CreatedAt:    g.CreatedAt,
		LastSeen:     g.LastSeen,
	}
	if g.CreatorBag != nil {
		n.CreatorBag = g.CreatorBag.Copy()
	}
	if g.JoinerBag != nil {
		n.JoinerBag = g.JoinerBag.Copy()
	}
	for id, rec := range g.Turns {
		n.Turns[id] = rec.Clone()
	}
	return n
}

// restoreFrom commits the mutable state of a computed transition back
// into the live aggregate. Must be called with g.mu held.
func (g *Game) restoreFrom(n *Game) {
	g.Board = n.Board
	g.Pending = n.Pending
	g.CreatorRack = n.CreatorRack
	g.JoinerRack = n.JoinerRack
	g.CreatorBag = n.CreatorBag
	g.JoinerBag = n.JoinerBag
	g.TurnCounter = n.TurnCounter
	g.ActiveTurnID = n.ActiveTurnID
	g.Turns = n.Turns
	g.LastSeen = n.LastSeen
}

// Touch updates the last seen timestamp. Must be called with g.mu held.
func (g *Game) touch() {
	g.LastSeen = time.Now()
}

func (g *Game) rackFor(creator bool) []tiles.Tile {
	if creator {
		return g.CreatorRack
	}
	return g.JoinerRack
}

func (g *Game) setRackFor(creator bool, rack []tiles.Tile) {
	if creator {
		g.CreatorRack = rack
	} else {
		g.JoinerRack = rack
	}
}

func (g *Game) bagFor(creator bool) *tiles.Bag {
	if creator {
		return g.CreatorBag
	}
	return g.JoinerBag
}

func (g *Game) playerFor(creator bool) uuid.UUID {
	if creator {
		return g.CreatorID
	}
	return g.JoinerID
}

// boardView overlays this turn's provisional placements on the committed
// board. Pending placements were validated on the way in, so the overlay
// cannot conflict.
func (g *Game) boardView() *board.Board {
	if len(g.Pending) == 0 {
		return g.Board.Copy()
	}
	nb := g.Board.Copy()
	_ = nb.Place(g.Pending)
	return nb
}

func clonePlacements(ps []board.Placement) []board.Placement {
	if ps == nil {
		return nil
	}
	out := make([]board.Placement, len(ps))
	copy(out, ps)
	return out
}
