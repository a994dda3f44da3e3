package workspace

import (
	"sort"
	"strings"

	"github.com/brettbedarf/notefs"
)

// ListChildren returns the direct children of parentID (notefs.RootID for
// the top level): folders before files, then case-insensitive by name, with
// id as the final tie-break so equal inputs always produce the same order.
func (s *Store) ListChildren(parentID string) []notefs.Node {
	var out []notefs.Node
	s.nodes.Range(func(_ string, n *notefs.Node) bool {
		if n.ParentID == parentID {
			out = append(out, *n)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].IsFolder()
		}
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search returns every node whose name contains query case-insensitively,
// plus every file whose content does. An empty query matches nothing rather
// than everything. No ranking; results are ordered by id so identical
// inputs yield identical output.
func (s *Store) Search(query string) []notefs.Node {
	if query == "" {
		return nil
	}
	q := strings.ToLower(query)
	var out []notefs.Node
	s.nodes.Range(func(_ string, n *notefs.Node) bool {
		if strings.Contains(strings.ToLower(n.Name), q) ||
			(n.IsFile() && strings.Contains(strings.ToLower(n.Content), q)) {
			out = append(out, *n)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
