package game

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract the engine depends on. Implementations
// must make each call atomic: a failed call leaves every persisted row as
// it was. MemStore backs development and tests; internal/storage provides
// the postgres implementation.
type Store interface {
	// Player directory.
	UpsertPlayer(ctx context.Context, p *Player) error
	Players(ctx context.Context) ([]Player, error)
	Player(ctx context.Context, id uuid.UUID) (*Player, error)
	PlayerByToken(ctx context.Context, token string) (*Player, error)

	// Invitation transport.
	CreateInvitation(ctx context.Context, inv *Invitation) error
	Invitation(ctx context.Context, id uuid.UUID) (*Invitation, error)
	PendingInvitation(ctx context.Context, receiverID uuid.UUID) (*Invitation, error)

	// Sessions. CreateSession marks the invitation accepted and writes the
	// game plus its first turn as one unit.
	CreateSession(ctx context.Context, g *Game, first *TurnRecord) error
	LoadGame(ctx context.Context, id uuid.UUID) (*Game, error)
	LoadGameByInvitation(ctx context.Context, invitationID uuid.UUID) (*Game, error)
	SavePending(ctx context.Context, g *Game) error
	SaveTurnTransition(ctx context.Context, g *Game, closed, next *TurnRecord) error
}
