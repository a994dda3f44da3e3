package notefs

// Renderer converts markdown source into presentable output. Rendering is an
// external collaborator: the core never interprets markdown itself, it only
// hands file content to whatever Renderer the embedding application supplies
// (i.e. an HTML renderer for a web shell, ANSI for a terminal one).
type Renderer interface {
	Render(source string) ([]byte, error)
}
