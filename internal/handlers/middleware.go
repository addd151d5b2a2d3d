package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"tinytiles/internal/board"
	"tinytiles/internal/game"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes. Anything outside the
// taxonomy is logged and surfaced as a generic failure.
func writeError(w http.ResponseWriter, err error) {
	var occ *board.OccupiedCellError
	var oob *board.OutOfBoundsError

	status := http.StatusInternalServerError
	msg := err.Error()
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrTurnNotFound),
		errors.Is(err, game.ErrInvitationNotFound),
		errors.Is(err, game.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrSessionExists),
		errors.Is(err, game.ErrTurnEnded):
		status = http.StatusConflict
	case errors.Is(err, game.ErrWrongPlayer),
		errors.Is(err, game.ErrNoTilesPlayed),
		errors.Is(err, game.ErrTileNotOnRack),
		errors.Is(err, game.ErrInvalidWord),
		errors.As(err, &occ),
		errors.As(err, &oob):
		status = http.StatusBadRequest
	default:
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	WriteJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// JSONContentType sets a default JSON Content-Type header on all
// responses.
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}
