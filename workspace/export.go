package workspace

// ExportFile produces a downloadable artifact for a file node: its content
// as bytes plus its display name as the suggested filename. Folders and
// unknown ids report ok=false. The export never touches the persisted model.
func (s *Store) ExportFile(id string) (name string, data []byte, ok bool) {
	n, ok := s.Get(id)
	if !ok || !n.IsFile() {
		return "", nil, false
	}
	return n.Name, []byte(n.Content), true
}
