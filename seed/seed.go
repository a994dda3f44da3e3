// Package seed collects the read-only startup documents: a flat directory
// of markdown files becomes root-level file nodes with deterministic ids.
package seed

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/brettbedarf/notefs"
	"github.com/brettbedarf/notefs/internal/util"
)

// IDPrefix tags every seed-derived id so seeds can never collide with
// runtime ids, which are UUIDs.
const IDPrefix = "post-"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// DeriveID maps a seed document filename to its stable node id: the name
// minus its .md extension, lowercased, every non-alphanumeric byte replaced
// with "-", prefixed with [IDPrefix]. The same filename always yields the
// same id, which is what lets the reconciler match persisted copies of seed
// documents across sessions.
func DeriveID(filename string) string {
	base := strings.TrimSuffix(filename, ".md")
	return IDPrefix + nonAlnum.ReplaceAllString(strings.ToLower(base), "-")
}

// Load reads every .md file directly under dir into the seed mapping. The
// seed is best-effort by design: a missing or unreadable directory yields
// an empty mapping, and individual unreadable files are skipped, both
// logged. The core must come up either way.
func Load(dir string) map[string]*notefs.Node {
	logger := util.GetLogger("seed.Load")

	nodes := map[string]*notefs.Node{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("Seed directory unavailable; starting empty")
		return nodes
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable seed document")
			continue
		}
		id := DeriveID(e.Name())
		nodes[id] = &notefs.Node{
			ID:        id,
			Name:      e.Name(),
			Kind:      notefs.KindFile,
			ParentID:  notefs.RootID,
			Content:   string(data),
			CreatedAt: time.Now().UnixMilli(),
		}
	}

	logger.Debug().Str("dir", dir).Int("documents", len(nodes)).Msg("Loaded seed documents")
	return nodes
}
