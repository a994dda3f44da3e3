package snapshot

import (
	"errors"
	"sort"

	"github.com/brettbedarf/notefs"
	"github.com/brettbedarf/notefs/internal/util"
	"github.com/brettbedarf/notefs/workspace"
)

// Reconciler bridges the workspace store and a snapshot Store. On startup
// it merges the persisted snapshot with the seed mapping; afterwards it
// observes the store and rewrites the full snapshot on every mutation.
type Reconciler struct {
	store Store
}

// NewReconciler creates a Reconciler over the given backend.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Restore produces the initial node mapping and active id for a session.
//
// Merge order is seed, then persisted, then seed re-applied: seed entries
// always reflect their latest authoritative content even when a stale local
// copy of the same id was persisted. Local edits to a seed-originated node
// therefore do not survive a seed update. That is the documented trade-off
// for seed documents always being current, not a bug.
//
// A missing snapshot is a clean first run. A malformed one is logged and
// treated as absent; the seed is never lost to a bad local file.
func (r *Reconciler) Restore(seed map[string]*notefs.Node) (map[string]*notefs.Node, string) {
	logger := util.GetLogger("snapshot.Restore")

	merged := make(map[string]*notefs.Node, len(seed))
	for id, n := range seed {
		cp := *n
		merged[id] = &cp
	}
	activeID := firstSeedID(seed)

	data, err := r.store.Load()
	switch {
	case errors.Is(err, ErrNotExist):
		logger.Debug().Msg("No persisted snapshot; starting from seed")
	case err != nil:
		logger.Warn().Err(err).Msg("Failed to load snapshot; starting from seed")
	default:
		snap, derr := Decode(data)
		if derr != nil {
			logger.Warn().Err(derr).Msg("Malformed snapshot; starting from seed")
			break
		}
		for id, n := range snap.Nodes {
			cp := *n
			merged[id] = &cp
		}
		// Seed wins on id collision
		for id, n := range seed {
			cp := *n
			merged[id] = &cp
		}
		if snap.ActiveID != "" {
			if _, ok := merged[snap.ActiveID]; ok {
				activeID = snap.ActiveID
			}
		}
		logger.Debug().
			Int("persisted", len(snap.Nodes)).
			Int("seed", len(seed)).
			Int("merged", len(merged)).
			Msg("Reconciled snapshot with seed")
	}

	return merged, activeID
}

// Attach subscribes the reconciler to the store: every mutation rewrites
// the full snapshot. Durability is best-effort; a failed write is logged
// and the in-memory state stays authoritative for the session.
func (r *Reconciler) Attach(ws *workspace.Store) {
	ws.Subscribe(func() {
		logger := util.GetLogger("snapshot.Attach")
		nodes, activeID := ws.Snapshot()
		snap := Snapshot{Nodes: nodes, ActiveID: activeID}
		data, err := snap.Encode()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to encode snapshot")
			return
		}
		if err := r.store.Save(data); err != nil {
			logger.Error().Err(err).Int("nodes", len(nodes)).Msg("Failed to persist snapshot")
		}
	})
}

// firstSeedID returns the first seed entry in sorted-id order, "" when the
// seed is empty. Used as the initial active selection before any snapshot
// has recorded one.
func firstSeedID(seed map[string]*notefs.Node) string {
	if len(seed) == 0 {
		return ""
	}
	ids := make([]string, 0, len(seed))
	for id := range seed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}
