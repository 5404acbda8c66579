package discovery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Candidate is a deck file found under a directory
type Candidate struct {
	Path  string
	Name  string // path relative to the scanned root
	Size  int64
	Pages int
}

const (
	maxDepth  = 5
	sniffSize = 64 * 1024
)

// Scanner finds deck documents in the filesystem
type Scanner struct {
	log *zap.Logger
}

// NewScanner creates a new deck scanner
func NewScanner(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log.Named("discovery")}
}

// Scan walks root looking for XML files that contain slide pages.
// Results are sorted by name.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Candidate, error) {
	var found []Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			s.log.Debug("Error walking path", zap.String("path", path), zap.Error(err))
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.Count(relPath, string(filepath.Separator)) >= maxDepth || skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}
		pages, ok := sniff(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		found = append(found, Candidate{Path: path, Name: relPath, Size: info.Size(), Pages: pages})
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	s.log.Debug("Scan complete", zap.String("root", root), zap.Int("decks", len(found)))
	return found, nil
}

// skipDir reports directories that never hold decks
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "dist", "build", "target", "__pycache__", "xslt":
		return true
	}
	return false
}

// sniff reads the head of path and counts page elements. Files without
// any are not decks.
func sniff(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, sniffSize))
	if err != nil {
		return 0, false
	}
	if bytes.Contains(head, []byte("xsl:stylesheet")) {
		return 0, false
	}
	pages := 0
	for _, tag := range []string{"<page>", "<page ", "<page/>"} {
		pages += bytes.Count(head, []byte(tag))
	}
	return pages, pages > 0
}
