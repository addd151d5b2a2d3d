package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"tinytiles/internal/board"
	"tinytiles/internal/tiles"
)

// Service is the use-case layer: invitation-to-session handoff and the
// per-game operations. Every game-mutating operation runs under that
// game's aggregate mutex and lands in the store as one atomic write.
type Service struct {
	registry *Registry
	store    Store
	scorer   Scorer
	words    WordChecker
}

// Option configures a Service.
type Option func(*Service)

// WithScorer replaces the baseline one-point-per-tile scorer.
func WithScorer(sc Scorer) Option {
	return func(s *Service) { s.scorer = sc }
}

// WithWordChecker replaces the accept-everything word checker.
func WithWordChecker(w WordChecker) Option {
	return func(s *Service) { s.words = w }
}

// NewService wires the orchestrator.
func NewService(registry *Registry, store Store, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		store:    store,
		scorer:   CountScorer,
		words:    AllowAllWords(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionInfo is the response to a successful session creation.
type SessionInfo struct {
	GameID      uuid.UUID    `json:"gameId"`
	FirstTurnID uuid.UUID    `json:"firstTurnId"`
	Board       [][]string   `json:"board"`
	CreatorRack []tiles.Tile `json:"creatorRack"`
	JoinerRack  []tiles.Tile `json:"joinerRack"`
}

// TurnResult is the response to a successful end-turn.
type TurnResult struct {
	TurnScore         int          `json:"turnScore"`
	RackAfter         []tiles.Tile `json:"rackAfter"`
	Drawn             []tiles.Tile `json:"drawn"`
	NextTurnID        uuid.UUID    `json:"nextTurnId"`
	NextIsCreatorTurn bool         `json:"nextIsCreatorTurn"`
}

// Status is the idempotent read clients poll.
type Status struct {
	GameID         uuid.UUID    `json:"gameId"`
	Waiting        bool         `json:"waiting"`
	Started        bool         `json:"started"`
	Board          [][]string   `json:"board,omitempty"`
	TurnCounter    int          `json:"turnCounter"`
	ActiveTurnID   uuid.UUID    `json:"activeTurnId"`
	IsCreatorTurn  bool         `json:"isCreatorTurn"`
	ActivePlayerID uuid.UUID    `json:"activePlayerId"`
	CreatorID      uuid.UUID    `json:"creatorId"`
	JoinerID       uuid.UUID    `json:"joinerId"`
	CreatorRack    []tiles.Tile `json:"creatorRack,omitempty"`
	JoinerRack     []tiles.Tile `json:"joinerRack,omitempty"`
	TilesRemaining int          `json:"tilesRemaining"`
}

// AddPlayer upserts a directory entry by name and issues a fresh login
// token.
func (s *Service) AddPlayer(ctx context.Context, name, token string) (*Player, error) {
	now := time.Now()
	p := &Player{
		ID:        uuid.New(),
		Name:      name,
		Token:     token,
		LastLogin: now,
		CreatedAt: now,
	}
	if err := s.store.UpsertPlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("upserting player: %w", err)
	}
	return p, nil
}

// Players lists the directory.
func (s *Service) Players(ctx context.Context) ([]Player, error) {
	return s.store.Players(ctx)
}

// PlayerByToken resolves a login token to a player.
func (s *Service) PlayerByToken(ctx context.Context, token string) (*Player, error) {
	return s.store.PlayerByToken(ctx, token)
}

// SendInvitation records a pending invitation. The receiver must exist.
func (s *Service) SendInvitation(ctx context.Context, senderID, receiverID uuid.UUID) (*Invitation, error) {
	if _, err := s.store.Player(ctx, receiverID); err != nil {
		return nil, err
	}
	inv := &Invitation{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     InviteStatusPending,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}
	return inv, nil
}

// PendingInvitation returns the oldest pending invitation addressed to
// the receiver, or ErrInvitationNotFound.
func (s *Service) PendingInvitation(ctx context.Context, receiverID uuid.UUID) (*Invitation, error) {
	return s.store.PendingInvitation(ctx, receiverID)
}

// CreateSession accepts a pending invitation and builds the game: a
// shuffled 100-tile set split into two halves, a 7-tile starting rack
// and an undrawn bag ledger per player, an empty board, and the first
// turn for the creator. Game and first turn persist as one unit.
func (s *Service) CreateSession(ctx context.Context, invitationID uuid.UUID) (*SessionInfo, error) {
	inv, err := s.store.Invitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case InviteStatusPending:
	case InviteStatusAccepted:
		return nil, ErrSessionExists
	default:
		return nil, ErrInvitationNotFound
	}

	set := tiles.StandardSet()
	tiles.Shuffle(set)
	creatorHalf, joinerHalf := tiles.Split(set)

	now := time.Now()
	g := &Game{
		ID:           uuid.New(),
		CreatorID:    inv.SenderID,
		JoinerID:     inv.ReceiverID,
		InvitationID: inv.ID,
		Board:        board.Empty(),
		CreatorRack:  tiles.Clone(creatorHalf[:tiles.RackLimit]),
		JoinerRack:   tiles.Clone(joinerHalf[:tiles.RackLimit]),
		CreatorBag:   tiles.NewBag(creatorHalf[tiles.RackLimit:]),
		JoinerBag:    tiles.NewBag(joinerHalf[tiles.RackLimit:]),
		Started:      true,
		Turns:        make(map[uuid.UUID]*TurnRecord),
		CreatedAt:    now,
		LastSeen:     now,
	}
	first := &TurnRecord{
		ID:            uuid.New(),
		GameID:        g.ID,
		IsCreatorTurn: true,
		StartRack:     tiles.Clone(g.CreatorRack),
		CreatedAt:     now,
		LastModified:  now,
	}
	g.ActiveTurnID = first.ID
	g.Turns[first.ID] = first

	if err := s.store.CreateSession(ctx, g, first); err != nil {
		return nil, err
	}
	s.registry.Put(g)

	log.Info().
		Str("gameId", g.ID.String()).
		Str("invitationId", inv.ID.String()).
		Str("creatorId", g.CreatorID.String()).
		Str("joinerId", g.JoinerID.String()).
		Msg("session created")

	return &SessionInfo{
		GameID:      g.ID,
		FirstTurnID: first.ID,
		Board:       g.Board.Rows(),
		CreatorRack: tiles.Clone(g.CreatorRack),
		JoinerRack:  tiles.Clone(g.JoinerRack),
	}, nil
}

// PlaceTiles writes provisional tiles ahead of end-turn. Placements are
// validated against the committed board plus earlier provisional tiles;
// committed cells are never overwritten.
func (s *Service) PlaceTiles(ctx context.Context, gameID, playerID uuid.UUID, placements []board.Placement) error {
	g, err := s.registry.GetOrLoad(ctx, gameID, s.store)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	view := g.boardView()
	if err := view.Place(placements); err != nil {
		return err
	}

	ng := g.Clone()
	ng.Pending = append(ng.Pending, placements...)
	if err := s.store.SavePending(ctx, ng); err != nil {
		return fmt.Errorf("persisting provisional tiles: %w", err)
	}
	g.Pending = ng.Pending
	g.touch()

	log.Debug().
		Str("gameId", gameID.String()).
		Str("playerId", playerID.String()).
		Int("tiles", len(placements)).
		Msg("provisional tiles placed")
	return nil
}

// EndTurn runs the turn state machine transition. The new state is
// computed on a copy of the aggregate and only committed to the live
// aggregate after the store write succeeds, so a failure at any step
// leaves board, racks, and bags exactly as before the call.
func (s *Service) EndTurn(ctx context.Context, gameID, playerID, turnID uuid.UUID, placements []board.Placement) (*TurnResult, error) {
	g, err := s.registry.GetOrLoad(ctx, gameID, s.store)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.Turns[turnID]
	if !ok {
		return nil, ErrTurnNotFound
	}
	if playerID != g.playerFor(rec.IsCreatorTurn) {
		return nil, ErrWrongPlayer
	}
	if rec.TurnEnded {
		return nil, ErrTurnEnded
	}
	if len(placements) == 0 {
		return nil, ErrNoTilesPlayed
	}

	ng := g.Clone()
	turn := ng.Turns[turnID]

	letters := lo.Map(placements, func(p board.Placement, _ int) string { return p.Letter })
	remaining, err := tiles.Subtract(ng.rackFor(turn.IsCreatorTurn), letters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTileNotOnRack, err)
	}

	if err := ng.Board.Place(placements); err != nil {
		return nil, err
	}
	if !s.words.IsLegal(g.Board, placements) {
		return nil, ErrInvalidWord
	}

	score := s.scorer(placements)
	drawn := ng.bagFor(turn.IsCreatorTurn).DrawAtMost(tiles.RackLimit - len(remaining))
	rackAfter := append(remaining, drawn...)
	ng.setRackFor(turn.IsCreatorTurn, rackAfter)

	now := time.Now()
	turn.PlayedTiles = clonePlacements(placements)
	turn.TurnScore = score
	turn.RackAfter = tiles.Clone(rackAfter)
	turn.DrawnAfter = drawn
	turn.TurnEnded = true
	turn.LastModified = now

	next := &TurnRecord{
		ID:            uuid.New(),
		GameID:        g.ID,
		IsCreatorTurn: !turn.IsCreatorTurn,
		StartRack:     tiles.Clone(ng.rackFor(!turn.IsCreatorTurn)),
		CreatedAt:     now,
		LastModified:  now,
	}
	ng.Turns[next.ID] = next
	ng.ActiveTurnID = next.ID
	ng.TurnCounter++
	ng.Pending = nil
	ng.LastSeen = now

	if err := s.store.SaveTurnTransition(ctx, ng, turn, next); err != nil {
		return nil, fmt.Errorf("persisting turn: %w", err)
	}
	g.restoreFrom(ng)

	log.Debug().
		Str("gameId", gameID.String()).
		Str("turnId", turnID.String()).
		Int("score", score).
		Int("drawn", len(drawn)).
		Msg("turn ended")

	return &TurnResult{
		TurnScore:         score,
		RackAfter:         tiles.Clone(rackAfter),
		Drawn:             tiles.Clone(drawn),
		NextTurnID:        next.ID,
		NextIsCreatorTurn: next.IsCreatorTurn,
	}, nil
}

// GameStatus returns the current state of a game.
func (s *Service) GameStatus(ctx context.Context, gameID uuid.UUID) (*Status, error) {
	g, err := s.registry.GetOrLoad(ctx, gameID, s.store)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusLocked(), nil
}

// StatusByInvitation is the poll a joiner runs while waiting for the
// session: before the game exists it reports waiting rather than an
// error.
func (s *Service) StatusByInvitation(ctx context.Context, invitationID uuid.UUID) (*Status, error) {
	if _, err := s.store.Invitation(ctx, invitationID); err != nil {
		return nil, err
	}
	loaded, err := s.store.LoadGameByInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return &Status{Waiting: true}, nil
		}
		return nil, err
	}
	return s.GameStatus(ctx, loaded.ID)
}

// statusLocked builds the status snapshot. Must be called with g.mu held.
func (g *Game) statusLocked() *Status {
	active := g.Turns[g.ActiveTurnID]
	st := &Status{
		GameID:         g.ID,
		Started:        g.Started,
		Board:          g.boardView().Rows(),
		TurnCounter:    g.TurnCounter,
		ActiveTurnID:   g.ActiveTurnID,
		CreatorID:      g.CreatorID,
		JoinerID:       g.JoinerID,
		CreatorRack:    tiles.Clone(g.CreatorRack),
		JoinerRack:     tiles.Clone(g.JoinerRack),
		TilesRemaining: g.CreatorBag.TilesRemaining() + g.JoinerBag.TilesRemaining(),
	}
	if active != nil {
		st.IsCreatorTurn = active.IsCreatorTurn
		st.ActivePlayerID = g.playerFor(active.IsCreatorTurn)
	}
	return st
}
