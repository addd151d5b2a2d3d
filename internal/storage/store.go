// Package storage persists the session engine's state in postgres via
// gorm. Each game-mutating write happens in one transaction, so a failed
// call leaves every row as it was.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tinytiles/internal/board"
	"tinytiles/internal/game"
	"tinytiles/internal/tiles"
)

// Store wraps a gorm DB instance and implements game.Store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) UpsertPlayer(ctx context.Context, p *game.Player) error {
	row := Player{
		ID:        p.ID,
		Name:      p.Name,
		Token:     p.Token,
		LastLogin: p.LastLogin,
	}
	err := s.db.WithContext(ctx).
		Where("name = ?", p.Name).
		Assign(map[string]any{
			"token":      p.Token,
			"last_login": p.LastLogin,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return err
	}
	*p = *playerFromRow(&row)
	p.Token = row.Token
	return nil
}

func (s *Store) Players(ctx context.Context) ([]game.Player, error) {
	var rows []Player
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]game.Player, len(rows))
	for i := range rows {
		out[i] = *playerFromRow(&rows[i])
	}
	return out, nil
}

func (s *Store) Player(ctx context.Context, id uuid.UUID) (*game.Player, error) {
	var row Player
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, game.ErrPlayerNotFound)
	}
	return playerFromRow(&row), nil
}

func (s *Store) PlayerByToken(ctx context.Context, token string) (*game.Player, error) {
	var row Player
	if err := s.db.WithContext(ctx).First(&row, "token = ?", token).Error; err != nil {
		return nil, translate(err, game.ErrPlayerNotFound)
	}
	return playerFromRow(&row), nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *game.Invitation) error {
	row := Invitation{
		ID:         inv.ID,
		SenderID:   inv.SenderID,
		ReceiverID: inv.ReceiverID,
		Status:     inv.Status,
		CreatedAt:  inv.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) Invitation(ctx context.Context, id uuid.UUID) (*game.Invitation, error) {
	var row Invitation
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, game.ErrInvitationNotFound)
	}
	return invitationFromRow(&row), nil
}

func (s *Store) PendingInvitation(ctx context.Context, receiverID uuid.UUID) (*game.Invitation, error) {
	var row Invitation
	err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, game.InviteStatusPending).
		Order("created_at").
		First(&row).Error
	if err != nil {
		return nil, translate(err, game.ErrInvitationNotFound)
	}
	return invitationFromRow(&row), nil
}

// CreateSession marks the invitation accepted and writes the game and its
// first turn as one transaction. The conditional status update plus the
// unique index on invitation_id close the race between concurrent
// creates.
func (s *Store) CreateSession(ctx context.Context, g *game.Game, first *game.TurnRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Invitation{}).
			Where("id = ? AND status = ?", g.InvitationID, game.InviteStatusPending).
			Update("status", game.InviteStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return game.ErrInvitationNotFound
		}
		if err := tx.Create(gameRow(g)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return game.ErrSessionExists
			}
			return err
		}
		return tx.Create(turnRow(first)).Error
	})
}

func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	var row Game
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, game.ErrGameNotFound)
	}
	return s.assemble(ctx, &row)
}

func (s *Store) LoadGameByInvitation(ctx context.Context, invitationID uuid.UUID) (*game.Game, error) {
	var row Game
	if err := s.db.WithContext(ctx).First(&row, "invitation_id = ?", invitationID).Error; err != nil {
		return nil, translate(err, game.ErrGameNotFound)
	}
	return s.assemble(ctx, &row)
}

func (s *Store) SavePending(ctx context.Context, g *game.Game) error {
	return s.db.WithContext(ctx).Model(&Game{}).
		Where("id = ?", g.ID).
		Updates(map[string]any{
			"pending_tiles": PlacementList(g.Pending),
			"last_seen":     g.LastSeen,
		}).Error
}

// SaveTurnTransition closes the current turn, updates the game row, and
// inserts the successor turn in one transaction.
func (s *Store) SaveTurnTransition(ctx context.Context, g *game.Game, closed, next *game.TurnRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&TurnRecord{}).
			Where("id = ?", closed.ID).
			Updates(map[string]any{
				"played_tiles":  PlacementList(closed.PlayedTiles),
				"turn_score":    closed.TurnScore,
				"rack_after":    TileList(closed.RackAfter),
				"drawn_after":   TileList(closed.DrawnAfter),
				"turn_ended":    true,
				"last_modified": closed.LastModified,
			}).Error
		if err != nil {
			return err
		}
		err = tx.Model(&Game{}).
			Where("id = ?", g.ID).
			Updates(map[string]any{
				"board":          BoardCells{g.Board},
				"pending_tiles":  PlacementList(nil),
				"creator_rack":   TileList(g.CreatorRack),
				"joiner_rack":    TileList(g.JoinerRack),
				"creator_bag":    TileList(g.CreatorBag.Tiles()),
				"joiner_bag":     TileList(g.JoinerBag.Tiles()),
				"turn_counter":   g.TurnCounter,
				"active_turn_id": g.ActiveTurnID,
				"last_seen":      g.LastSeen,
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(turnRow(next)).Error
	})
}

func (s *Store) assemble(ctx context.Context, row *Game) (*game.Game, error) {
	var turnRows []TurnRecord
	if err := s.db.WithContext(ctx).Where("game_id = ?", row.ID).Find(&turnRows).Error; err != nil {
		return nil, err
	}
	return gameFromRow(row, turnRows), nil
}

func translate(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func playerFromRow(row *Player) *game.Player {
	return &game.Player{
		ID:           row.ID,
		Name:         row.Name,
		Token:        row.Token,
		OverallScore: row.OverallScore,
		Wins:         row.Wins,
		Losses:       row.Losses,
		GameCount:    row.GameCount,
		LastLogin:    row.LastLogin,
		CreatedAt:    row.CreatedAt,
	}
}

func invitationFromRow(row *Invitation) *game.Invitation {
	return &game.Invitation{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
	}
}

func gameRow(g *game.Game) *Game {
	return &Game{
		ID:           g.ID,
		CreatorID:    g.CreatorID,
		JoinerID:     g.JoinerID,
		InvitationID: g.InvitationID,
		Board:        BoardCells{g.Board.Copy()},
		PendingTiles: PlacementList(g.Pending),
		CreatorRack:  TileList(tiles.Clone(g.CreatorRack)),
		JoinerRack:   TileList(tiles.Clone(g.JoinerRack)),
		CreatorBag:   TileList(g.CreatorBag.Tiles()),
		JoinerBag:    TileList(g.JoinerBag.Tiles()),
		TurnCounter:  g.TurnCounter,
		Started:      g.Started,
		ActiveTurnID: g.ActiveTurnID,
		LastSeen:     g.LastSeen,
		CreatedAt:    g.CreatedAt,
	}
}

func turnRow(t *game.TurnRecord) *TurnRecord {
	return &TurnRecord{
		ID:            t.ID,
		GameID:        t.GameID,
		IsCreatorTurn: t.IsCreatorTurn,
		StartRack:     TileList(tiles.Clone(t.StartRack)),
		PlayedTiles:   PlacementList(t.PlayedTiles),
		TurnScore:     t.TurnScore,
		RackAfter:     TileList(tiles.Clone(t.RackAfter)),
		DrawnAfter:    TileList(tiles.Clone(t.DrawnAfter)),
		TurnEnded:     t.TurnEnded,
		CreatedAt:     t.CreatedAt,
		LastModified:  t.LastModified,
	}
}

func gameFromRow(row *Game, turnRows []TurnRecord) *game.Game {
	b := row.Board.Board
	if b == nil {
		b = board.Empty()
	}
	g := &game.Game{
		ID:           row.ID,
		CreatorID:    row.CreatorID,
		JoinerID:     row.JoinerID,
		InvitationID: row.InvitationID,
		Board:        b,
		Pending:      []board.Placement(row.PendingTiles),
		CreatorRack:  tiles.Clone(row.CreatorRack),
		JoinerRack:   tiles.Clone(row.JoinerRack),
		CreatorBag:   tiles.NewBag(row.CreatorBag),
		JoinerBag:    tiles.NewBag(row.JoinerBag),
		TurnCounter:  row.TurnCounter,
		Started:      row.Started,
		ActiveTurnID: row.ActiveTurnID,
		Turns:        make(map[uuid.UUID]*game.TurnRecord, len(turnRows)),
		CreatedAt:    row.CreatedAt,
		LastSeen:     row.LastSeen,
	}
	if g.LastSeen.IsZero() {
		g.LastSeen = time.Now()
	}
	for i := range turnRows {
		rec := turnFromRow(&turnRows[i])
		g.Turns[rec.ID] = rec
	}
	return g
}

func turnFromRow(row *TurnRecord) *game.TurnRecord {
	return &game.TurnRecord{
		ID:            row.ID,
		GameID:        row.GameID,
		IsCreatorTurn: row.IsCreatorTurn,
		StartRack:     tiles.Clone(row.StartRack),
		PlayedTiles:   []board.Placement(row.PlayedTiles),
		TurnScore:     row.TurnScore,
		RackAfter:     tiles.Clone(row.RackAfter),
		DrawnAfter:    tiles.Clone(row.DrawnAfter),
		TurnEnded:     row.TurnEnded,
		CreatedAt:     row.CreatedAt,
		LastModified:  row.LastModified,
	}
}
