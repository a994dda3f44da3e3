package notefs

// Kind identifies what a tree entry is
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// RootID is the parent sentinel for top-level nodes
const RootID = ""

// Node is a single entry in the virtual note tree.
//
// The JSON field names are the persisted snapshot wire format and must stay
// stable; an incompatible change needs a new snapshot version token instead
// (see the snapshot package).
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"` // Display name; sibling collisions are permitted
	Kind     Kind   `json:"type"` // Immutable after creation
	ParentID string `json:"parentId,omitempty"`
	// Content is the markdown body. Meaningful for file nodes only; folders
	// always carry ""
	Content string `json:"content"`
	// IsExpanded controls whether the presentation layer shows a folder's
	// descendants. Meaningful for folder nodes only
	IsExpanded bool `json:"isOpen,omitempty"`
	// CreatedAt is epoch milliseconds, set once at creation
	CreatedAt int64 `json:"createdAt"`
}

// IsFile reports whether the node is a file entry
func (n *Node) IsFile() bool {
	return n.Kind == KindFile
}

// IsFolder reports whether the node is a folder entry
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}
