// Package store persists mod lists and the download path in a single JSON
// document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/frederic-klein/mrm/internal/modlist"
)

const (
	// AppName names the per-user configuration directory.
	AppName = "modrinth-manage"
	// FileName is the document's file name inside that directory.
	FileName = "config.json"
)

// document mirrors the on-disk JSON layout.
type document struct {
	DownloadPath string   `json:"downloadPath"`
	ModLists     []record `json:"modLists"`
}

type record struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ModCount int      `json:"modCount"`
	Mods     []string `json:"mods"`
}

// Store owns the persisted mod lists. Every mutation is a whole-document
// read-modify-write performed under an advisory file lock.
type Store struct {
	path                string
	defaultDownloadPath string
	mu                  sync.Mutex
	lock                *flock.Flock
	newID               func() string
}

// DefaultPath returns the document location under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}
	return filepath.Join(dir, AppName, FileName), nil
}

// New creates a store backed by the document at path. The document is created
// on first write; until then defaultDownloadPath is reported as the download path.
func New(path, defaultDownloadPath string) *Store {
	return &Store{
		path:                path,
		defaultDownloadPath: defaultDownloadPath,
		lock:                flock.New(path + ".lock"),
		newID:               uuid.NewString,
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// List returns every list in creation order.
func (s *Store) List() ([]modlist.ModList, error) {
	var lists []modlist.ModList
	err := s.view(func(doc *document) error {
		lists = make([]modlist.ModList, 0, len(doc.ModLists))
		for _, r := range doc.ModLists {
			lists = append(lists, r.toModList())
		}
		return nil
	})
	return lists, err
}

// Get returns the list with the given id.
func (s *Store) Get(id string) (modlist.ModList, error) {
	var list modlist.ModList
	err := s.view(func(doc *document) error {
		i, err := doc.indexOf(id)
		if err != nil {
			return err
		}
		list = doc.ModLists[i].toModList()
		return nil
	})
	return list, err
}

// GetByName returns the list whose name equals the trimmed name exactly.
func (s *Store) GetByName(name string) (modlist.ModList, error) {
	name = strings.TrimSpace(name)
	var list modlist.ModList
	err := s.view(func(doc *document) error {
		for _, r := range doc.ModLists {
			if r.Name == name {
				list = r.toModList()
				return nil
			}
		}
		return fmt.Errorf("list %q: %w", name, modlist.ErrNotFound)
	})
	return list, err
}

// Lookup finds a list by id, falling back to an exact name match.
func (s *Store) Lookup(ref string) (modlist.ModList, error) {
	list, err := s.Get(ref)
	if err == nil || !errors.Is(err, modlist.ErrNotFound) {
		return list, err
	}
	return s.GetByName(ref)
}

// Create validates name and persists a new, empty list.
func (s *Store) Create(name string) (modlist.ModList, error) {
	var created modlist.ModList
	err := s.update(func(doc *document) error {
		trimmed, err := doc.validateName(name, "")
		if err != nil {
			return err
		}
		r := record{ID: s.newID(), Name: trimmed, Mods: []string{}}
		doc.ModLists = append(doc.ModLists, r)
		created = r.toModList()
		return nil
	})
	return created, err
}

// Rename validates newName against every other list and persists it.
// Renaming a list to its current name succeeds without change.
func (s *Store) Rename(id, newName string) (modlist.ModList, error) {
	var renamed modlist.ModList
	err := s.update(func(doc *document) error {
		i, err := doc.indexOf(id)
		if err != nil {
			return err
		}
		trimmed, err := doc.validateName(newName, id)
		if err != nil {
			return err
		}
		doc.ModLists[i].Name = trimmed
		renamed = doc.ModLists[i].toModList()
		return nil
	})
	return renamed, err
}

// Delete removes the list with the given id.
func (s *Store) Delete(id string) error {
	return s.update(func(doc *document) error {
		i, err := doc.indexOf(id)
		if err != nil {
			return err
		}
		doc.ModLists = slices.Delete(doc.ModLists, i, i+1)
		return nil
	})
}

// AddMods appends refs to the list in order, skipping empty refs and refs
// that are already members. It returns the refs actually added.
func (s *Store) AddMods(id string, refs []string) ([]string, error) {
	var added []string
	err := s.update(func(doc *document) error {
		i, err := doc.indexOf(id)
		if err != nil {
			return err
		}
		r := &doc.ModLists[i]
		present := make(map[string]bool, len(r.Mods)+len(refs))
		for _, m := range r.Mods {
			present[m] = true
		}
		for _, ref := range refs {
			if ref == "" || present[ref] {
				continue
			}
			present[ref] = true
			added = append(added, ref)
		}
		r.Mods = append(r.Mods, added...)
		return nil
	})
	return added, err
}

// RemoveMods drops every member contained in refs. It returns the refs
// actually removed, in list order.
func (s *Store) RemoveMods(id string, refs []string) ([]string, error) {
	var removed []string
	err := s.update(func(doc *document) error {
		i, err := doc.indexOf(id)
		if err != nil {
			return err
		}
		drop := make(map[string]bool, len(refs))
		for _, ref := range refs {
			drop[ref] = true
		}
		r := &doc.ModLists[i]
		kept := make([]string, 0, len(r.Mods))
		for _, m := range r.Mods {
			if drop[m] {
				removed = append(removed, m)
				continue
			}
			kept = append(kept, m)
		}
		r.Mods = kept
		return nil
	})
	return removed, err
}

// DownloadPath returns the configured download directory.
func (s *Store) DownloadPath() (string, error) {
	var path string
	err := s.view(func(doc *document) error {
		path = doc.DownloadPath
		return nil
	})
	return path, err
}

// SetDownloadPath persists a new download directory.
func (s *Store) SetDownloadPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return &modlist.ValidationError{Reason: modlist.ReasonEmpty}
	}
	return s.update(func(doc *document) error {
		doc.DownloadPath = path
		return nil
	})
}

func (s *Store) view(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		doc := s.defaults()
		return fn(&doc)
	}

	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("locking %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update applies fn to a freshly loaded document and writes the result.
// Nothing is written when fn fails.
func (s *Store) update(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", s.path, err)
	}
	defer s.lock.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) defaults() document {
	return document{DownloadPath: s.defaultDownloadPath, ModLists: []record{}}
}

func (s *Store) load() (*document, error) {
	doc := s.defaults()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if doc.DownloadPath == "" {
		doc.DownloadPath = s.defaultDownloadPath
	}
	for i := range doc.ModLists {
		doc.ModLists[i].Mods = uniqueRefs(doc.ModLists[i].Mods)
	}
	return &doc, nil
}

// uniqueRefs drops empty and repeated refs, keeping first occurrences.
func uniqueRefs(refs []string) []string {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
	}
	return out
}

func (s *Store) save(doc *document) error {
	for i := range doc.ModLists {
		doc.ModLists[i].ModCount = len(doc.ModLists[i].Mods)
	}
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Write to temp file first, then rename
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming config: %w", err)
	}
	return nil
}

func (doc *document) indexOf(id string) (int, error) {
	for i, r := range doc.ModLists {
		if r.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("list %q: %w", id, modlist.ErrNotFound)
}

// validateName normalizes name and rejects it when another list, other than
// the one identified by selfID, already uses it.
func (doc *document) validateName(name, selfID string) (string, error) {
	trimmed, err := modlist.NormalizeName(name)
	if err != nil {
		return "", err
	}
	for _, r := range doc.ModLists {
		if r.Name == trimmed && r.ID != selfID {
			return "", &modlist.ValidationError{Reason: modlist.ReasonDuplicate}
		}
	}
	return trimmed, nil
}

func (r record) toModList() modlist.ModList {
	return modlist.ModList{ID: r.ID, Name: r.Name, Mods: r.Mods}.Clone()
}
