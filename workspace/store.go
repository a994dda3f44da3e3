package workspace

import (
	"sync"
	"time"

	"github.com/brettbedarf/notefs"
	"github.com/brettbedarf/notefs/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// Store is the canonical owner of every node record in the workspace. All
// mutations go through it; no other component keeps mutable copies. Records
// are replaced whole on mutation (read current, produce new record, swap) so
// a partially written node is never observable.
//
// Operations on an id that does not exist are silent no-ops: actions only
// ever arrive through already-rendered nodes, so a miss means the node was
// just deleted and there is nothing useful to report.
//
// Mutations are safe to call from multiple goroutines but are not atomic
// against each other: two concurrent writes to the same node resolve as
// last-writer-wins at whole-record granularity, not per field. The intended
// model is a single writer driven by discrete user actions; concurrent
// callers must not assume field-level merging.
type Store struct {
	nodes *xsync.Map[string, *notefs.Node]

	mu        sync.RWMutex // protects activeID and observers
	activeID  string
	observers []func()
}

// New creates a Store seeded with the given initial mapping and active id.
// The records are copied in; the caller's map is not retained. Pass the
// output of a snapshot.Reconciler restore, or an empty map for a blank
// workspace.
func New(nodes map[string]*notefs.Node, activeID string) *Store {
	s := &Store{nodes: xsync.NewMap[string, *notefs.Node]()}
	for id, n := range nodes {
		if n == nil {
			continue
		}
		cp := *n
		s.nodes.Store(id, &cp)
	}
	if activeID != "" {
		if _, ok := s.nodes.Load(activeID); ok {
			s.activeID = activeID
		}
	}
	return s
}

// Subscribe registers fn to run after every completed mutation. Observers
// see the post-mutation state; this is how the snapshot reconciler and the
// server change feed hang off the store without the store knowing them.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// notify runs registered observers. Never called with mu held so observers
// are free to read back through the public API.
func (s *Store) notify() {
	s.mu.RLock()
	obs := make([]func(), len(s.observers))
	copy(obs, s.observers)
	s.mu.RUnlock()
	for _, fn := range obs {
		fn()
	}
}

// CreateFile inserts a new empty file under parentID (RootID for top level)
// and marks it active. Name uniqueness is not checked. Returns the new id.
func (s *Store) CreateFile(parentID, name string) string {
	id := uuid.NewString()
	s.nodes.Store(id, &notefs.Node{
		ID:        id,
		Name:      name,
		Kind:      notefs.KindFile,
		ParentID:  parentID,
		CreatedAt: time.Now().UnixMilli(),
	})
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	s.notify()
	return id
}

// CreateFolder inserts a new expanded folder under parentID. The active
// selection is left untouched. Returns the new id.
func (s *Store) CreateFolder(parentID, name string) string {
	id := uuid.NewString()
	s.nodes.Store(id, &notefs.Node{
		ID:         id,
		Name:       name,
		Kind:       notefs.KindFolder,
		ParentID:   parentID,
		IsExpanded: true,
		CreatedAt:  time.Now().UnixMilli(),
	})
	s.notify()
	return id
}

// Rename replaces the node's display name. No format or uniqueness checks.
func (s *Store) Rename(id, newName string) {
	cur, ok := s.nodes.Load(id)
	if !ok {
		return
	}
	next := *cur
	next.Name = newName
	s.nodes.Store(id, &next)
	s.notify()
}

// UpdateContent replaces the body of a file node. Folders never carry
// content, so a folder id is a no-op.
func (s *Store) UpdateContent(id, content string) {
	cur, ok := s.nodes.Load(id)
	if !ok || !cur.IsFile() {
		return
	}
	next := *cur
	next.Content = content
	s.nodes.Store(id, &next)
	s.notify()
}

// ToggleExpanded flips a folder's expanded flag.
func (s *Store) ToggleExpanded(id string) {
	cur, ok := s.nodes.Load(id)
	if !ok || !cur.IsFolder() {
		return
	}
	next := *cur
	next.IsExpanded = !cur.IsExpanded
	s.nodes.Store(id, &next)
	s.notify()
}

// Delete removes id and its entire subtree. Descendants are discovered by
// scanning parent pointers to a fixed point: the doomed set grows until one
// full pass adds nothing, and only then are records removed, so no pass can
// miss a grandchild whose parent was found late. If the active node is in
// the doomed set the active selection is cleared.
func (s *Store) Delete(id string) {
	if _, ok := s.nodes.Load(id); !ok {
		return
	}
	logger := util.GetLogger("workspace.Delete")

	doomed := map[string]struct{}{id: {}}
	for {
		grew := false
		s.nodes.Range(func(nid string, n *notefs.Node) bool {
			if _, dead := doomed[nid]; dead {
				return true
			}
			if _, dead := doomed[n.ParentID]; dead {
				doomed[nid] = struct{}{}
				grew = true
			}
			return true
		})
		if !grew {
			break
		}
	}

	for nid := range doomed {
		s.nodes.Delete(nid)
	}

	s.mu.Lock()
	if _, dead := doomed[s.activeID]; dead {
		s.activeID = ""
	}
	s.mu.Unlock()

	logger.Debug().Str("id", id).Int("removed", len(doomed)).Msg("Deleted subtree")
	s.notify()
}

// SetActive records which node is open for editing. The caller is expected
// to pass a live id but existence is not enforced; readers treat a stale
// active id as "no active node".
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	s.notify()
}

// ActiveID returns the current active node id, or "" when none is selected.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveNode returns the active node record, degrading to ok=false when the
// active id is unset or no longer resolves.
func (s *Store) ActiveNode() (notefs.Node, bool) {
	return s.Get(s.ActiveID())
}

// Get returns a copy of the node record for id.
func (s *Store) Get(id string) (notefs.Node, bool) {
	n, ok := s.nodes.Load(id)
	if !ok {
		return notefs.Node{}, false
	}
	return *n, true
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	return s.nodes.Size()
}

// Snapshot returns a copy of the full mapping plus the active id, suitable
// for serialization. The returned records are fresh copies; mutating them
// does not touch the store.
func (s *Store) Snapshot() (map[string]*notefs.Node, string) {
	out := make(map[string]*notefs.Node, s.nodes.Size())
	s.nodes.Range(func(id string, n *notefs.Node) bool {
		cp := *n
		out[id] = &cp
		return true
	})
	return out, s.ActiveID()
}
