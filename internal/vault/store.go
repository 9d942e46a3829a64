package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reader is the read surface the corpus index needs from a document store.
// Both calls are fallible per document; callers degrade to empty results
// rather than aborting.
type Reader interface {
	ListDocuments(folder string) ([]string, error)
	ReadDocument(path string) (string, error)
}

// Store is a filesystem-backed markdown vault. Paths passed to its methods
// are vault-relative and use forward slashes.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory. The directory does
// not have to exist yet; writes create it on demand.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the vault root directory.
func (s *Store) Root() string {
	return s.root
}

// ListDocuments returns the markdown files directly inside a vault folder,
// as vault-relative paths sorted by name. A missing folder lists as empty.
func (s *Store) ListDocuments(folder string) ([]string, error) {
	entries, err := os.ReadDir(s.abs(folder))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list vault folder %q: %w", folder, err)
	}
	var docs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		docs = append(docs, joinRel(folder, entry.Name()))
	}
	sort.Strings(docs)
	return docs, nil
}

// ReadDocument reads one vault document as text.
func (s *Store) ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(s.abs(path))
	if err != nil {
		return "", fmt.Errorf("read vault document %q: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument creates or overwrites a vault document, creating parent
// folders as needed.
func (s *Store) WriteDocument(path, content string) error {
	target := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create vault folder for %q: %w", path, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write vault document %q: %w", path, err)
	}
	return nil
}

// AppendDocument appends content to a vault document, creating it (and its
// folders) when missing.
func (s *Store) AppendDocument(path, content string) error {
	target := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create vault folder for %q: %w", path, err)
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open vault document %q: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("append vault document %q: %w", path, err)
	}
	return nil
}

// Exists reports whether a vault document is present.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(s.abs(path))
	return err == nil && !info.IsDir()
}

// DailyPath builds the year/month-bucketed path for a daily note,
// e.g. Research/Dailies/2026/09/2026-09-01.md.
func DailyPath(folder, date string) string {
	if len(date) < 7 {
		return joinRel(folder, date+".md")
	}
	return joinRel(folder, date[:4], date[5:7], date+".md")
}

// WriteDaily writes a daily note without clobbering an existing one: when the
// bucketed path is taken it appends -2, -3, ... until a free name is found.
// Returns the vault-relative path actually written.
func (s *Store) WriteDaily(folder, date, content string) (string, error) {
	path := DailyPath(folder, date)
	if s.Exists(path) {
		base := strings.TrimSuffix(path, ".md")
		for i := 2; ; i++ {
			candidate := fmt.Sprintf("%s-%d.md", base, i)
			if !s.Exists(candidate) {
				path = candidate
				break
			}
		}
	}
	if err := s.WriteDocument(path, content); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func joinRel(parts ...string) string {
	return strings.Join(parts, "/")
}
