package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tinytiles/internal/board"
	"tinytiles/internal/tiles"
)

// TileList is a tile slice persisted as a JSON column. It decodes exactly
// once, at this boundary; the engine only ever sees typed tiles.
type TileList []tiles.Tile

func (l TileList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *TileList) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// PlacementList is a placement slice persisted as a JSON column.
type PlacementList []board.Placement

func (l PlacementList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *PlacementList) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// BoardCells persists a board as its nested row-major JSON form. Decoding
// re-checks the 15x15 dimensions.
type BoardCells struct {
	*board.Board
}

func (b BoardCells) Value() (driver.Value, error) {
	if b.Board == nil {
		return json.Marshal(board.Empty())
	}
	return json.Marshal(b.Board)
}

func (b *BoardCells) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	b.Board = board.Empty()
	return json.Unmarshal(data, b.Board)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("cannot scan %T as JSON", src)
	}
}

// Player is a directory entry.
type Player struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"uniqueIndex;not null"`
	Token        string    `gorm:"index"`
	OverallScore int
	Wins         int
	Losses       int
	GameCount    int
	LastLogin    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Invitation is the handoff record between two players.
type Invitation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID `gorm:"type:uuid;index"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index"`
	Status     string    `gorm:"index;default:pending"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Game is the session row. Board, racks, and bag ledgers persist as
// typed JSON columns; the unique index on InvitationID is what makes
// one-session-per-invitation hold under concurrent creates.
type Game struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatorID    uuid.UUID `gorm:"type:uuid;index"`
	JoinerID     uuid.UUID `gorm:"type:uuid;index"`
	InvitationID uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	Board        BoardCells    `gorm:"type:jsonb"`
	PendingTiles PlacementList `gorm:"type:jsonb"`
	CreatorRack  TileList      `gorm:"type:jsonb"`
	JoinerRack   TileList      `gorm:"type:jsonb"`
	CreatorBag   TileList      `gorm:"type:jsonb"`
	JoinerBag    TileList      `gorm:"type:jsonb"`

	TurnCounter  int
	Started      bool
	ActiveTurnID uuid.UUID `gorm:"type:uuid"`

	LastSeen  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Turns []TurnRecord `gorm:"foreignKey:GameID"`
}

// TurnRecord is one player's turn.
type TurnRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	GameID        uuid.UUID `gorm:"type:uuid;index"`
	IsCreatorTurn bool
	StartRack     TileList      `gorm:"type:jsonb"`
	PlayedTiles   PlacementList `gorm:"type:jsonb"`
	TurnScore     int
	RackAfter     TileList `gorm:"type:jsonb"`
	DrawnAfter    TileList `gorm:"type:jsonb"`
	TurnEnded     bool     `gorm:"index"`
	CreatedAt     time.Time
	LastModified  time.Time
}
