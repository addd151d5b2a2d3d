// Package handlers is the HTTP boundary. Handlers decode the request,
// call into the game service, and map engine errors onto status codes;
// no game state is touched here.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tinytiles/internal/board"
	"tinytiles/internal/game"
	"tinytiles/pkg/utils"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	Svc *game.Service
}

// NewHandler creates a new handler instance.
func NewHandler(svc *game.Service) *Handler {
	return &Handler{Svc: svc}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/players", h.HandleAddPlayer)
	r.Get("/players", h.HandleListPlayers)
	r.Post("/players/lookup", h.HandlePlayerByToken)

	r.Post("/invitations", h.HandleSendInvitation)
	r.Get("/invitations/pending", h.HandlePendingInvitation)

	r.Post("/games", h.HandleCreateSession)
	r.Get("/games/{gameID}", h.HandleStatus)
	r.Get("/games/by-invitation/{invitationID}", h.HandleStatusByInvitation)
	r.Post("/games/{gameID}/board", h.HandlePlaceTiles)
	r.Post("/games/{gameID}/turn", h.HandleEndTurn)
}

type addPlayerRequest struct {
	Name string `json:"name"`
}

// HandleAddPlayer upserts a directory entry and issues a login token.
func (h *Handler) HandleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing player name"})
		return
	}
	token := utils.RandomHex(16)
	p, err := h.Svc.AddPlayer(r.Context(), req.Name, token)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "player": p, "token": token})
}

// HandleListPlayers lists the directory.
func (h *Handler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.Svc.Players(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "players": players})
}

type tokenLookupRequest struct {
	Token string `json:"token"`
}

// HandlePlayerByToken resolves a login token to a player id.
func (h *Handler) HandlePlayerByToken(w http.ResponseWriter, r *http.Request) {
	var req tokenLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing token"})
		return
	}
	p, err := h.Svc.PlayerByToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "playerId": p.ID})
}

type sendInvitationRequest struct {
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
}

// HandleSendInvitation records a pending invitation.
func (h *Handler) HandleSendInvitation(w http.ResponseWriter, r *http.Request) {
	var req sendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	inv, err := h.Svc.SendInvitation(r.Context(), req.SenderID, req.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "invitation": inv})
}

// HandlePendingInvitation returns the oldest pending invitation for a
// receiver, polled from the lobby.
func (h *Handler) HandlePendingInvitation(w http.ResponseWriter, r *http.Request) {
	receiverID, err := uuid.Parse(r.URL.Query().Get("receiverId"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing receiverId"})
		return
	}
	inv, err := h.Svc.PendingInvitation(r.Context(), receiverID)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "invitation": inv})
}

type createSessionRequest struct {
	InvitationID uuid.UUID `json:"invitationId"`
}

// HandleCreateSession accepts an invitation and sets up the game.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	info, err := h.Svc.CreateSession(r.Context(), req.InvitationID)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "game": info})
}

// HandleStatus returns the current game state.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad game id"})
		return
	}
	st, err := h.Svc.GameStatus(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "status": st})
}

// HandleStatusByInvitation is the waiting-room poll: it reports waiting
// until the session exists.
func (h *Handler) HandleStatusByInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, err := uuid.Parse(chi.URLParam(r, "invitationID"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad invitation id"})
		return
	}
	st, err := h.Svc.StatusByInvitation(r.Context(), invitationID)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "status": st})
}

type placeTilesRequest struct {
	PlayerID uuid.UUID         `json:"playerId"`
	Tiles    []board.Placement `json:"tiles"`
}

// HandlePlaceTiles writes provisional tiles ahead of end-turn.
func (h *Handler) HandlePlaceTiles(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad game id"})
		return
	}
	var req placeTilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	if err := h.Svc.PlaceTiles(r.Context(), gameID, req.PlayerID, req.Tiles); err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type endTurnRequest struct {
	PlayerID uuid.UUID         `json:"playerId"`
	TurnID   uuid.UUID         `json:"turnId"`
	Tiles    []board.Placement `json:"tiles"`
}

// HandleEndTurn commits the active turn.
func (h *Handler) HandleEndTurn(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad game id"})
		return
	}
	var req endTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json"})
		return
	}
	res, err := h.Svc.EndTurn(r.Context(), gameID, req.PlayerID, req.TurnID, req.Tiles)
	if err != nil {
		writeError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "turn": res})
}
