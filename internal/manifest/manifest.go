// Package manifest reads and writes portable YAML copies of a mod list.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/mrm/internal/modlist"
)

// FormatVersion is written into every manifest.
const FormatVersion = 1

// Manifest is the exported form of a mod list. Ids are not exported; an
// import always creates a fresh list.
type Manifest struct {
	Format int      `yaml:"format"`
	Name   string   `yaml:"name"`
	Mods   []string `yaml:"mods"`
}

// FromList builds the manifest for list.
func FromList(list modlist.ModList) Manifest {
	mods := list.Mods
	if mods == nil {
		mods = []string{}
	}
	return Manifest{Format: FormatVersion, Name: list.Name, Mods: mods}
}

// Emitter writes manifests as YAML.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new manifest emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes list as a manifest document.
func (e *Emitter) Emit(list modlist.ModList) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(FromList(list)); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// Parser reads manifests.
type Parser struct {
	r io.Reader
}

// NewParser creates a new manifest parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads one manifest document.
func (p *Parser) Parse() (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(p.r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading manifest: empty document")
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if m.Format > FormatVersion {
		return nil, fmt.Errorf("reading manifest: unsupported format %d", m.Format)
	}
	return &m, nil
}

// Importer creates lists and fills them.
type Importer interface {
	Create(name string) (modlist.ModList, error)
	AddMods(id string, refs []string) ([]string, error)
	Delete(id string) error
}

// Catalog resolves manifest refs to catalog records.
type Catalog interface {
	FetchByIDs(ctx context.Context, ids []string) ([]modlist.RemoteMod, error)
}

// Import creates a new list from m. Every ref must exist in catalog; slugs
// are stored as the project id they name. Name rules and de-duplication are
// the store's, and a list whose mods cannot be added is removed again.
func Import(ctx context.Context, store Importer, catalog Catalog, m *Manifest) (modlist.ModList, error) {
	ids, err := projectIDs(ctx, catalog, m.Mods)
	if err != nil {
		return modlist.ModList{}, fmt.Errorf("importing %q: %w", m.Name, err)
	}
	list, err := store.Create(m.Name)
	if err != nil {
		return modlist.ModList{}, err
	}
	added, err := store.AddMods(list.ID, ids)
	if err != nil {
		if delErr := store.Delete(list.ID); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return modlist.ModList{}, fmt.Errorf("importing %q: %w", list.Name, err)
	}
	list.Mods = append(list.Mods, added...)
	return list, nil
}

func projectIDs(ctx context.Context, catalog Catalog, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	mods, err := catalog.FetchByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	known := make(map[string]string, len(mods)*2)
	for _, mod := range mods {
		known[mod.ID] = mod.ID
		if mod.Slug != "" {
			known[mod.Slug] = mod.ID
		}
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, ok := known[ref]
		if !ok {
			return nil, fmt.Errorf("mod %q: %w", ref, modlist.ErrNotFound)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
