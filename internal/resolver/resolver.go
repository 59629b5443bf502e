package resolver

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/mrm/internal/modlist"
)

// Catalog is the part of the remote catalog the resolver needs.
type Catalog interface {
	FetchByIDs(ctx context.Context, ids []string) ([]modlist.RemoteMod, error)
}

// Resolver filters a mod list down to the members compatible with a game
// version and loader pair.
type Resolver struct {
	catalog Catalog
	logger  *log.Logger
}

// NewResolver creates a new compatibility resolver.
func NewResolver(catalog Catalog, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		catalog: catalog,
		logger:  logger,
	}
}

// Resolve returns the refs whose catalog record supports both version and
// loader. The result follows the catalog's order, not the order of refs.
// An empty result is not an error.
func (r *Resolver) Resolve(ctx context.Context, version, loader string, refs []string) ([]string, error) {
	compatible := []string{}
	if len(refs) == 0 {
		return compatible, nil
	}

	mods, err := r.catalog.FetchByIDs(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("fetching %d mods: %w", len(refs), err)
	}

	wanted := make(map[string]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}

	seen := make(map[string]bool, len(mods))
	for _, m := range mods {
		ref := refFor(m, wanted)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true

		if !m.SupportsVersion(version) {
			r.logger.Debug("incompatible game version", "mod", ref, "version", version)
			continue
		}
		if !m.SupportsLoader(loader) {
			r.logger.Debug("incompatible loader", "mod", ref, "loader", loader)
			continue
		}
		compatible = append(compatible, ref)
	}

	r.logger.Debug("resolved", "version", version, "loader", loader, "compatible", len(compatible), "total", len(refs))
	return compatible, nil
}

// refFor maps a catalog record back to the reference stored in the list,
// which may be the project's id or its slug.
func refFor(m modlist.RemoteMod, wanted map[string]bool) string {
	if wanted[m.ID] {
		return m.ID
	}
	if m.Slug != "" && wanted[m.Slug] {
		return m.Slug
	}
	return ""
}
