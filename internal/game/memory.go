package game

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemStore is the in-memory Store implementation. It backs the service
// when no database is configured, and the tests. State is lost when the
// process exits.
type MemStore struct {
	mu          sync.RWMutex
	players     map[uuid.UUID]*Player
	invitations map[uuid.UUID]*Invitation
	games       map[uuid.UUID]*Game
	byInvite    map[uuid.UUID]uuid.UUID // invitation id -> game id
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		players:     make(map[uuid.UUID]*Player),
		invitations: make(map[uuid.UUID]*Invitation),
		games:       make(map[uuid.UUID]*Game),
		byInvite:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *MemStore) UpsertPlayer(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.players {
		if existing.Name == p.Name {
			existing.Token = p.Token
			existing.LastLogin = p.LastLogin
			*p = *existing
			return nil
		}
	}
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (m *MemStore) Players(ctx context.Context) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MemStore) Player(ctx context.Context, id uuid.UUID) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemStore) PlayerByToken(ctx context.Context, token string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if p.Token == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPlayerNotFound
}

func (m *MemStore) CreateInvitation(ctx context.Context, inv *Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invitations[inv.ID] = &cp
	return nil
}

func (m *MemStore) Invitation(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.invitations[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MemStore) PendingInvitation(ctx context.Context, receiverID uuid.UUID) (*Invitation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var oldest *Invitation
	for _, inv := range m.invitations {
		if inv.ReceiverID != receiverID || inv.Status != InviteStatusPending {
			continue
		}
		if oldest == nil || inv.CreatedAt.Before(oldest.CreatedAt) {
			oldest = inv
		}
	}
	if oldest == nil {
		return nil, ErrInvitationNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (m *MemStore) CreateSession(ctx context.Context, g *Game, first *TurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invitations[g.InvitationID]
	if !ok || inv.Status != InviteStatusPending {
		return ErrInvitationNotFound
	}
	if _, exists := m.byInvite[g.InvitationID]; exists {
		return ErrSessionExists
	}
	inv.Status = InviteStatusAccepted
	m.games[g.ID] = g.Clone()
	m.byInvite[g.InvitationID] = g.ID
	return nil
}

func (m *MemStore) LoadGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g.Clone(), nil
}

func (m *MemStore) LoadGameByInvitation(ctx context.Context, invitationID uuid.UUID) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byInvite[invitationID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return m.games[id].Clone(), nil
}

func (m *MemStore) SavePending(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.games[g.ID]
	if !ok {
		return ErrGameNotFound
	}
	stored.Pending = clonePlacements(g.Pending)
	stored.Board = g.Board.Copy()
	return nil
}

func (m *MemStore) SaveTurnTransition(ctx context.Context, g *Game, closed, next *TurnRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; !ok {
		return ErrGameNotFound
	}
	m.games[g.ID] = g.Clone()
	return nil
}
