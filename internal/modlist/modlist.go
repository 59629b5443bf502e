package modlist

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength is the longest list name accepted, in characters.
	MaxNameLength = 24
	// PageSize is the fixed number of catalog entries per search page.
	PageSize = 20
)

// ModList is a named, ordered, duplicate-free collection of catalog references.
type ModList struct {
	ID   string
	Name string
	Mods []string // catalog project ids, in display order
}

// ModCount returns the number of members. It is always derived from Mods.
func (l ModList) ModCount() int {
	return len(l.Mods)
}

// Contains reports whether ref is a member of the list.
func (l ModList) Contains(ref string) bool {
	return slices.Contains(l.Mods, ref)
}

// Clone returns a copy that shares no memory with l.
func (l ModList) Clone() ModList {
	l.Mods = slices.Clone(l.Mods)
	if l.Mods == nil {
		l.Mods = []string{}
	}
	return l
}

// NormalizeName trims a proposed list name and checks its length.
// Uniqueness is the store's concern.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", &ValidationError{Reason: ReasonTooLong}
	}
	return trimmed, nil
}

// RemoteMod is a read-only projection of a catalog project.
// It is never persisted.
type RemoteMod struct {
	ID           string
	Slug         string
	Title        string
	Description  string
	Downloads    int
	GameVersions []string // ordered as the catalog reports them
	Loaders      []string
}

// SupportsVersion reports whether the project declares support for version.
func (m RemoteMod) SupportsVersion(version string) bool {
	return slices.Contains(m.GameVersions, version)
}

// SupportsLoader reports whether the project declares support for loader.
func (m RemoteMod) SupportsLoader(loader string) bool {
	return slices.Contains(m.Loaders, loader)
}

// SearchResult is one page of catalog search hits.
type SearchResult struct {
	Hits      []RemoteMod
	TotalHits int
	Page      int
}

// TotalPages returns the number of pages needed to show every hit.
func (r SearchResult) TotalPages() int {
	if r.TotalHits <= 0 {
		return 0
	}
	return (r.TotalHits + PageSize - 1) / PageSize
}

// GameVersions groups version labels by release channel.
type GameVersions struct {
	Release  []string
	Snapshot []string
	Beta     []string
	Alpha    []string
}

// Version is a published release of a project.
type Version struct {
	ID            string
	ProjectID     string
	Name          string
	VersionNumber string
	GameVersions  []string
	Loaders       []string
	Files         []VersionFile
}

// VersionFile is a downloadable artifact of a Version.
type VersionFile struct {
	URL      string
	Filename string
	Primary  bool
	Size     int64
}

// PrimaryFile returns the file flagged primary, falling back to the first one.
func (v Version) PrimaryFile() (VersionFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return VersionFile{}, false
}
