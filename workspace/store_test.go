package workspace

import (
	"testing"

	"github.com/brettbedarf/notefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyStore() *Store {
	return New(map[string]*notefs.Node{}, "")
}

func TestStore_CreateFile(t *testing.T) {
	s := emptyStore()

	id := s.CreateFile(notefs.RootID, "notes.md")
	require.NotEmpty(t, id)

	n, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "notes.md", n.Name)
	assert.Equal(t, notefs.KindFile, n.Kind)
	assert.Equal(t, notefs.RootID, n.ParentID)
	assert.Empty(t, n.Content)
	assert.False(t, n.IsExpanded)
	assert.NotZero(t, n.CreatedAt)

	// A new file is immediately open for editing
	assert.Equal(t, id, s.ActiveID())
}

func TestStore_CreateFolder(t *testing.T) {
	s := emptyStore()
	fileID := s.CreateFile(notefs.RootID, "a.md")

	folderID := s.CreateFolder(notefs.RootID, "Notes")
	require.NotEmpty(t, folderID)

	n, ok := s.Get(folderID)
	require.True(t, ok)
	assert.Equal(t, notefs.KindFolder, n.Kind)
	assert.True(t, n.IsExpanded)
	assert.Empty(t, n.Content)

	// Creating a folder does not steal the active selection
	assert.Equal(t, fileID, s.ActiveID())
}

func TestStore_CreateFile_UniqueIDs(t *testing.T) {
	s := emptyStore()

	seen := make(map[string]bool)
	for range 50 {
		id := s.CreateFile(notefs.RootID, "same-name.md")
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, 50, s.Len())
}

func TestStore_Rename(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")

	s.Rename(id, "b.md")

	n, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "b.md", n.Name)
	// Kind and content untouched by a rename
	assert.Equal(t, notefs.KindFile, n.Kind)
	assert.Empty(t, n.Content)
}

func TestStore_Rename_MissingID(t *testing.T) {
	s := emptyStore()
	s.CreateFile(notefs.RootID, "a.md")

	// Must not panic or surface an error
	s.Rename("no-such-id", "b.md")
	assert.Equal(t, 1, s.Len())
}

func TestStore_UpdateContent(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")

	s.UpdateContent(id, "# Hello")

	n, _ := s.Get(id)
	assert.Equal(t, "# Hello", n.Content)
}

func TestStore_UpdateContent_FolderIsNoop(t *testing.T) {
	s := emptyStore()
	id := s.CreateFolder(notefs.RootID, "Notes")

	s.UpdateContent(id, "# Hello")

	// Folders always carry empty content
	n, _ := s.Get(id)
	assert.Empty(t, n.Content)
}

func TestStore_UpdateContent_MissingID(t *testing.T) {
	s := emptyStore()
	s.UpdateContent("no-such-id", "x")
	assert.Equal(t, 0, s.Len())
}

func TestStore_ToggleExpanded(t *testing.T) {
	s := emptyStore()
	id := s.CreateFolder(notefs.RootID, "Notes")

	s.ToggleExpanded(id)
	n, _ := s.Get(id)
	assert.False(t, n.IsExpanded)

	s.ToggleExpanded(id)
	n, _ = s.Get(id)
	assert.True(t, n.IsExpanded)
}

func TestStore_ToggleExpanded_FileIsNoop(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")

	s.ToggleExpanded(id)

	n, _ := s.Get(id)
	assert.False(t, n.IsExpanded)
}

func TestStore_Delete_Leaf(t *testing.T) {
	s := emptyStore()
	keep := s.CreateFile(notefs.RootID, "keep.md")
	gone := s.CreateFile(notefs.RootID, "gone.md")

	s.Delete(gone)

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(gone)
	assert.False(t, ok)
	_, ok = s.Get(keep)
	assert.True(t, ok)
}

func TestStore_Delete_Cascade(t *testing.T) {
	s := emptyStore()
	top := s.CreateFolder(notefs.RootID, "top")
	mid := s.CreateFolder(top, "mid")
	deep := s.CreateFolder(mid, "deep")
	s.CreateFile(deep, "leaf.md")
	s.CreateFile(mid, "note.md")
	outside := s.CreateFile(notefs.RootID, "outside.md")

	s.Delete(top)

	// Exactly the reachable subtree is gone, nothing else
	assert.Equal(t, 1, s.Len())
	n, ok := s.Get(outside)
	require.True(t, ok)
	assert.Equal(t, notefs.RootID, n.ParentID)
}

func TestStore_Delete_NoDanglingParents(t *testing.T) {
	s := emptyStore()
	folder := s.CreateFolder(notefs.RootID, "docs")
	s.CreateFile(folder, "a.md")
	s.CreateFile(folder, "b.md")
	s.CreateFolder(notefs.RootID, "other")

	s.Delete(folder)

	// Every surviving node's parent chain still terminates at root
	nodes, _ := s.Snapshot()
	for _, n := range nodes {
		if n.ParentID == notefs.RootID {
			continue
		}
		_, ok := nodes[n.ParentID]
		assert.True(t, ok, "node %s has dangling parent %s", n.ID, n.ParentID)
	}
}

func TestStore_Delete_ClearsActiveDirectly(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")
	require.Equal(t, id, s.ActiveID())

	s.Delete(id)

	assert.Empty(t, s.ActiveID())
	_, ok := s.ActiveNode()
	assert.False(t, ok)
}

func TestStore_Delete_ClearsActiveViaAncestor(t *testing.T) {
	s := emptyStore()
	folder := s.CreateFolder(notefs.RootID, "docs")
	fileID := s.CreateFile(folder, "a.md")
	require.Equal(t, fileID, s.ActiveID())

	s.Delete(folder)

	assert.Empty(t, s.ActiveID())
}

func TestStore_Delete_UnrelatedKeepsActive(t *testing.T) {
	s := emptyStore()
	other := s.CreateFile(notefs.RootID, "other.md")
	active := s.CreateFile(notefs.RootID, "active.md")

	s.Delete(other)

	assert.Equal(t, active, s.ActiveID())
}

func TestStore_Delete_MissingID(t *testing.T) {
	s := emptyStore()
	s.CreateFile(notefs.RootID, "a.md")

	s.Delete("no-such-id")
	assert.Equal(t, 1, s.Len())
}

func TestStore_SetActive_StaleIDDegrades(t *testing.T) {
	s := emptyStore()
	s.SetActive("never-existed")

	// The raw id is recorded but readers see no active node
	assert.Equal(t, "never-existed", s.ActiveID())
	_, ok := s.ActiveNode()
	assert.False(t, ok)
}

func TestStore_New_CopiesInput(t *testing.T) {
	orig := &notefs.Node{ID: "n1", Name: "a.md", Kind: notefs.KindFile}
	s := New(map[string]*notefs.Node{"n1": orig}, "n1")

	orig.Name = "mutated.md"

	n, ok := s.Get("n1")
	require.True(t, ok)
	assert.Equal(t, "a.md", n.Name)
	assert.Equal(t, "n1", s.ActiveID())
}

func TestStore_New_SkipsNilEntries(t *testing.T) {
	s := New(map[string]*notefs.Node{
		"ok":  {ID: "ok", Name: "a.md", Kind: notefs.KindFile},
		"nil": nil,
	}, "")

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("nil")
	assert.False(t, ok)
}

func TestStore_New_DropsUnknownActive(t *testing.T) {
	s := New(map[string]*notefs.Node{}, "ghost")
	assert.Empty(t, s.ActiveID())
}

func TestStore_Snapshot_ReturnsCopies(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")

	nodes, activeID := s.Snapshot()
	require.Contains(t, nodes, id)
	assert.Equal(t, id, activeID)

	nodes[id].Name = "mutated.md"
	n, _ := s.Get(id)
	assert.Equal(t, "a.md", n.Name)
}

func TestStore_Subscribe_NotifiedOnMutations(t *testing.T) {
	s := emptyStore()
	calls := 0
	s.Subscribe(func() { calls++ })

	id := s.CreateFile(notefs.RootID, "a.md")
	s.Rename(id, "b.md")
	s.UpdateContent(id, "x")
	s.SetActive(id)
	s.Delete(id)
	assert.Equal(t, 5, calls)

	// No-ops on missing ids do not notify
	s.Rename("ghost", "x")
	s.Delete("ghost")
	s.UpdateContent("ghost", "x")
	assert.Equal(t, 5, calls)
}

func TestStore_ExportFile(t *testing.T) {
	s := emptyStore()
	id := s.CreateFile(notefs.RootID, "a.md")
	s.UpdateContent(id, "# Hi")

	name, data, ok := s.ExportFile(id)
	require.True(t, ok)
	assert.Equal(t, "a.md", name)
	assert.Equal(t, []byte("# Hi"), data)
}

func TestStore_ExportFile_FolderOrMissing(t *testing.T) {
	s := emptyStore()
	folderID := s.CreateFolder(notefs.RootID, "docs")

	_, _, ok := s.ExportFile(folderID)
	assert.False(t, ok)

	_, _, ok = s.ExportFile("no-such-id")
	assert.False(t, ok)
}
