package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	cleanupInterval = 5 * time.Minute
	idleAfter       = 24 * time.Hour
)

// Registry hands out the single live aggregate per game id. The aggregate's
// own mutex serializes mutations; the registry guarantees there is exactly
// one aggregate (and so one mutex) per game in this process.
type Registry struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Game
}

// NewRegistry creates a registry and starts the idle cleanup goroutine.
func NewRegistry() *Registry {
	r := &Registry{games: make(map[uuid.UUID]*Game)}
	go func() {
		for {
			time.Sleep(cleanupInterval)
			r.mu.Lock()
			for id, g := range r.games {
				g.mu.Lock()
				idle := time.Since(g.LastSeen) > idleAfter
				g.mu.Unlock()
				if idle {
					delete(r.games, id)
				}
			}
			r.mu.Unlock()
		}
	}()
	return r
}

// Put registers a freshly created aggregate.
func (r *Registry) Put(g *Game) {
	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()
}

// GetOrLoad returns the live aggregate for id, loading it through the
// store when this process has not seen the game yet. Evicted or restarted
// games rehydrate from their persisted rows.
func (r *Registry) GetOrLoad(ctx context.Context, id uuid.UUID, store Store) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.games[id]; ok {
		return g, nil
	}
	g, err := store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	r.games[id] = g
	return g, nil
}
