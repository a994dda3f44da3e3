// Package server exposes the workspace operations to a presentation layer
// over JSON HTTP plus a WebSocket change feed. Only validated primitives
// (ids, names, content strings) cross the boundary; no presentation types
// reach the core.
package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"sync"

	"github.com/brettbedarf/notefs"
	"github.com/brettbedarf/notefs/internal/util"
	"github.com/brettbedarf/notefs/workspace"
	"github.com/gorilla/websocket"
)

// Server adapts store operations to HTTP. It subscribes to the store so
// every mutation, whichever client caused it, is pushed to all connected
// change-feed sockets.
type Server struct {
	ws       *workspace.Store
	renderer notefs.Renderer
	upgrader websocket.Upgrader

	mu    sync.Mutex // protects feeds
	feeds map[*websocket.Conn]struct{}
}

// New creates a Server over the given store. renderer may be nil, in which
// case the preview endpoint reports that rendering is not configured.
func New(ws *workspace.Store, renderer notefs.Renderer) *Server {
	s := &Server{
		ws:       ws,
		renderer: renderer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		feeds: map[*websocket.Conn]struct{}{},
	}
	ws.Subscribe(s.broadcast)
	return s
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workspace", s.handleWorkspace)
	mux.HandleFunc("/api/children", s.handleChildren)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/files", s.handleCreateFile)
	mux.HandleFunc("/api/folders", s.handleCreateFolder)
	mux.HandleFunc("/api/rename", s.handleRename)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/select", s.handleSelect)
	mux.HandleFunc("/api/toggle", s.handleToggle)
	mux.HandleFunc("/api/nodes", s.handleDeleteNode)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/preview", s.handlePreview)
	mux.HandleFunc("/api/events", s.handleEvents)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) // nolint:errcheck
}

// idRequest is the body for every operation addressed at a single node.
type idRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}

type createRequest struct {
	ParentID string `json:"parentId"`
	Name     string `json:"name"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handleWorkspace returns the full mapping plus active id, the read surface
// a shell renders from.
func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	nodes, activeID := s.ws.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes":    nodes,
		"activeId": activeID,
	})
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	children := s.ws.ListChildren(r.URL.Query().Get("parent"))
	if children == nil {
		children = []notefs.Node{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results := s.ws.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []notefs.Node{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := s.ws.CreateFile(req.ParentID, req.Name)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := s.ws.CreateFolder(req.ParentID, req.Name)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.ws.Rename(req.ID, req.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.ws.UpdateContent(req.ID, req.Content)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.ws.SetActive(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.ws.ToggleExpanded(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ws.Delete(r.URL.Query().Get("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleDownload streams a file node's content with its name as the
// suggested filename. A pure export; nothing in the model changes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, data, ok := s.ws.ExportFile(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.Write(data) // nolint:errcheck
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.renderer == nil {
		http.Error(w, "No renderer configured", http.StatusNotImplemented)
		return
	}
	n, ok := s.ws.Get(r.URL.Query().Get("id"))
	if !ok || !n.IsFile() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	out, err := s.renderer.Render(n.Content)
	if err != nil {
		logger := util.GetLogger("server.handlePreview")
		logger.Error().Err(err).Str("id", n.ID).Msg("Renderer failed")
		http.Error(w, fmt.Sprintf("Render failed: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out) // nolint:errcheck
}

// handleEvents upgrades to a WebSocket change feed. Each store mutation
// sends one "changed" message; shells re-pull whatever views they render.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	logger := util.GetLogger("server.handleEvents")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.mu.Lock()
	s.feeds[conn] = struct{}{}
	s.mu.Unlock()
	logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Change feed connected")

	// Drain until the client goes away, then detach
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.feeds, conn)
			s.mu.Unlock()
			conn.Close()
			logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Change feed disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast notifies every connected change feed. A failed write just drops
// that connection; its read loop cleans up.
func (s *Server) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.feeds {
		conn.WriteMessage(websocket.TextMessage, []byte("changed")) // nolint:errcheck
	}
}
