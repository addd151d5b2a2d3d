package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"tinytiles/internal/game"
)

func newTestRouter() *chi.Mux {
	svc := game.NewService(game.NewRegistry(), game.NewMemStore())
	h := NewHandler(svc)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w.Code, resp
}

func addPlayer(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	code, resp := doJSON(t, r, "POST", "/players", fmt.Sprintf(`{"name":%q}`, name))
	if code != http.StatusOK {
		t.Fatalf("add player returned %d: %v", code, resp)
	}
	return resp["player"].(map[string]any)["id"].(string)
}

// createSession drives the whole handoff: two players, an invitation,
// and an accepted session. Returns gameId, firstTurnId, creatorId,
// joinerId, and the creator's rack letters.
func createSession(t *testing.T, r http.Handler) (string, string, string, string, []string) {
	t.Helper()
	creator := addPlayer(t, r, "ada")
	joiner := addPlayer(t, r, "bert")

	code, resp := doJSON(t, r, "POST", "/invitations",
		fmt.Sprintf(`{"senderId":%q,"receiverId":%q}`, creator, joiner))
	if code != http.StatusOK {
		t.Fatalf("send invitation returned %d: %v", code, resp)
	}
	invID := resp["invitation"].(map[string]any)["id"].(string)

	code, resp = doJSON(t, r, "POST", "/games", fmt.Sprintf(`{"invitationId":%q}`, invID))
	if code != http.StatusCreated {
		t.Fatalf("create session returned %d: %v", code, resp)
	}
	g := resp["game"].(map[string]any)
	var letters []string
	for _, tl := range g["creatorRack"].([]any) {
		letters = append(letters, tl.(map[string]any)["letter"].(string))
	}
	return g["gameId"].(string), g["firstTurnId"].(string), creator, joiner, letters
}

func TestAddAndListPlayers(t *testing.T) {
	r := newTestRouter()
	addPlayer(t, r, "ada")
	addPlayer(t, r, "bert")

	code, resp := doJSON(t, r, "GET", "/players", "")
	if code != http.StatusOK {
		t.Fatalf("list players returned %d", code)
	}
	if got := len(resp["players"].([]any)); got != 2 {
		t.Fatalf("expected 2 players, got %d", got)
	}
}

func TestAddPlayerMissingName(t *testing.T) {
	r := newTestRouter()
	code, _ := doJSON(t, r, "POST", "/players", `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestInvitationReceiverMissing(t *testing.T) {
	r := newTestRouter()
	creator := addPlayer(t, r, "ada")
	code, _ := doJSON(t, r, "POST", "/invitations",
		fmt.Sprintf(`{"senderId":%q,"receiverId":"4dfc3f55-4d9a-4bb0-9d4b-5f4d01a1a001"}`, creator))
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestCreateSessionFlow(t *testing.T) {
	r := newTestRouter()
	gameID, _, _, _, _ := createSession(t, r)

	code, resp := doJSON(t, r, "GET", "/games/"+gameID, "")
	if code != http.StatusOK {
		t.Fatalf("status returned %d", code)
	}
	st := resp["status"].(map[string]any)
	if st["tilesRemaining"].(float64) != 86 {
		t.Fatalf("expected 86 tiles remaining, got %v", st["tilesRemaining"])
	}
	if st["isCreatorTurn"] != true {
		t.Fatalf("expected creator to be on turn")
	}
}

func TestCreateSessionConflict(t *testing.T) {
	r := newTestRouter()
	creator := addPlayer(t, r, "ada")
	joiner := addPlayer(t, r, "bert")

	_, resp := doJSON(t, r, "POST", "/invitations",
		fmt.Sprintf(`{"senderId":%q,"receiverId":%q}`, creator, joiner))
	invID := resp["invitation"].(map[string]any)["id"].(string)

	code, _ := doJSON(t, r, "POST", "/games", fmt.Sprintf(`{"invitationId":%q}`, invID))
	if code != http.StatusCreated {
		t.Fatalf("first create returned %d", code)
	}
	code, _ = doJSON(t, r, "POST", "/games", fmt.Sprintf(`{"invitationId":%q}`, invID))
	if code != http.StatusConflict {
		t.Fatalf("second create returned %d, expected 409", code)
	}
}

func TestEndTurnWrongPlayer(t *testing.T) {
	r := newTestRouter()
	gameID, turnID, _, joiner, letters := createSession(t, r)

	code, resp := doJSON(t, r, "POST", "/games/"+gameID+"/turn",
		fmt.Sprintf(`{"playerId":%q,"turnId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`,
			joiner, turnID, letters[0]))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", code, resp)
	}
}

func TestEndTurnAndOccupiedCell(t *testing.T) {
	r := newTestRouter()
	gameID, turnID, creator, joiner, letters := createSession(t, r)

	code, resp := doJSON(t, r, "POST", "/games/"+gameID+"/turn",
		fmt.Sprintf(`{"playerId":%q,"turnId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`,
			creator, turnID, letters[0]))
	if code != http.StatusOK {
		t.Fatalf("end turn returned %d: %v", code, resp)
	}
	turn := resp["turn"].(map[string]any)
	if turn["turnScore"].(float64) != 1 {
		t.Fatalf("expected score 1, got %v", turn["turnScore"])
	}
	nextTurnID := turn["nextTurnId"].(string)

	// joiner aims at the same cell
	_, resp = doJSON(t, r, "GET", "/games/"+gameID, "")
	st := resp["status"].(map[string]any)
	joinerLetter := st["joinerRack"].([]any)[0].(map[string]any)["letter"].(string)

	code, resp = doJSON(t, r, "POST", "/games/"+gameID+"/turn",
		fmt.Sprintf(`{"playerId":%q,"turnId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`,
			joiner, nextTurnID, joinerLetter))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for occupied cell, got %d: %v", code, resp)
	}
	if !strings.Contains(resp["error"].(string), "occupied") {
		t.Fatalf("expected occupied-cell message, got %v", resp["error"])
	}
}

func TestDoubleEndTurnConflict(t *testing.T) {
	r := newTestRouter()
	gameID, turnID, creator, _, letters := createSession(t, r)

	body := fmt.Sprintf(`{"playerId":%q,"turnId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`,
		creator, turnID, letters[0])
	code, _ := doJSON(t, r, "POST", "/games/"+gameID+"/turn", body)
	if code != http.StatusOK {
		t.Fatalf("first end turn returned %d", code)
	}
	code, resp := doJSON(t, r, "POST", "/games/"+gameID+"/turn", body)
	if code != http.StatusConflict {
		t.Fatalf("second end turn returned %d, expected 409: %v", code, resp)
	}
}

func TestPlaceTiles(t *testing.T) {
	r := newTestRouter()
	gameID, _, creator, _, letters := createSession(t, r)

	code, resp := doJSON(t, r, "POST", "/games/"+gameID+"/board",
		fmt.Sprintf(`{"playerId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`, creator, letters[0]))
	if code != http.StatusOK {
		t.Fatalf("place tiles returned %d: %v", code, resp)
	}

	// same cell again is rejected
	code, _ = doJSON(t, r, "POST", "/games/"+gameID+"/board",
		fmt.Sprintf(`{"playerId":%q,"tiles":[{"letter":%q,"x":7,"y":7}]}`, creator, letters[1]))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestStatusUnknownGame(t *testing.T) {
	r := newTestRouter()
	code, _ := doJSON(t, r, "GET", "/games/0d1f7e86-1ff8-4a2f-9f9c-0a64ad3c8d10", "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestWaitingRoomPoll(t *testing.T) {
	r := newTestRouter()
	creator := addPlayer(t, r, "ada")
	joiner := addPlayer(t, r, "bert")

	_, resp := doJSON(t, r, "POST", "/invitations",
		fmt.Sprintf(`{"senderId":%q,"receiverId":%q}`, creator, joiner))
	invID := resp["invitation"].(map[string]any)["id"].(string)

	// joiner sees the pending invitation
	code, resp := doJSON(t, r, "GET", "/invitations/pending?receiverId="+joiner, "")
	if code != http.StatusOK {
		t.Fatalf("pending poll returned %d", code)
	}
	if resp["invitation"].(map[string]any)["id"].(string) != invID {
		t.Fatalf("pending poll returned wrong invitation")
	}

	// waiting until the session exists
	code, resp = doJSON(t, r, "GET", "/games/by-invitation/"+invID, "")
	if code != http.StatusOK {
		t.Fatalf("waiting poll returned %d", code)
	}
	if resp["status"].(map[string]any)["waiting"] != true {
		t.Fatalf("expected waiting status")
	}

	doJSON(t, r, "POST", "/games", fmt.Sprintf(`{"invitationId":%q}`, invID))

	_, resp = doJSON(t, r, "GET", "/games/by-invitation/"+invID, "")
	if resp["status"].(map[string]any)["waiting"] != false {
		t.Fatalf("expected game to be up")
	}
}
