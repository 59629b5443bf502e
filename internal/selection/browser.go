package selection

import (
	"context"
	"fmt"

	"github.com/frederic-klein/mrm/internal/modlist"
)

// Searcher is the paged search half of the remote catalog.
type Searcher interface {
	Search(ctx context.Context, page int, query string) (modlist.SearchResult, error)
}

// Fetcher resolves ids to full catalog records.
type Fetcher interface {
	FetchByIDs(ctx context.Context, ids []string) ([]modlist.RemoteMod, error)
}

// Candidate is a catalog entry as presented to the user during a flow.
type Candidate struct {
	modlist.RemoteMod
	Selectable bool
	Selected   bool
}

// Browser pages through catalog search results for a Session.
type Browser struct {
	session *Session
	catalog Searcher
	query   string
	page    int
	result  modlist.SearchResult
	loaded  bool
}

// Browse creates a Browser over query, starting at the first page.
func (s *Session) Browse(catalog Searcher, query string) *Browser {
	return &Browser{session: s, catalog: catalog, query: query}
}

// Load fetches the current page.
func (b *Browser) Load(ctx context.Context) error {
	return b.goTo(ctx, b.page)
}

// GoTo fetches the given page. On failure the browser stays where it was.
func (b *Browser) GoTo(ctx context.Context, page int) error {
	return b.goTo(ctx, page)
}

// Next advances one page. It is a no-op on the last page.
func (b *Browser) Next(ctx context.Context) error {
	if !b.HasNext() {
		return nil
	}
	return b.goTo(ctx, b.page+1)
}

// Previous goes back one page. It is a no-op on the first page.
func (b *Browser) Previous(ctx context.Context) error {
	if !b.HasPrevious() {
		return nil
	}
	return b.goTo(ctx, b.page-1)
}

func (b *Browser) goTo(ctx context.Context, page int) error {
	if b.session.state != StateActive {
		return ErrSessionClosed
	}
	if page < 0 {
		return fmt.Errorf("invalid page %d", page)
	}
	result, err := b.catalog.Search(ctx, page, b.query)
	if err != nil {
		return err
	}
	b.session.Recognize(result.Hits...)
	b.page = page
	b.result = result
	b.loaded = true
	return nil
}

// Page returns the zero-based index of the current page.
func (b *Browser) Page() int { return b.page }

// TotalHits returns the hit count reported with the last loaded page.
func (b *Browser) TotalHits() int { return b.result.TotalHits }

// TotalPages returns the page count for the last loaded result.
func (b *Browser) TotalPages() int { return b.result.TotalPages() }

// HasNext reports whether a page follows the current one.
func (b *Browser) HasNext() bool {
	return b.loaded && (b.page+1)*modlist.PageSize < b.result.TotalHits
}

// HasPrevious reports whether a page precedes the current one.
func (b *Browser) HasPrevious() bool {
	return b.loaded && b.page > 0
}

// Candidates returns the hits of the current page annotated with the
// session's view of them.
func (b *Browser) Candidates() []Candidate {
	candidates := make([]Candidate, 0, len(b.result.Hits))
	for _, m := range b.result.Hits {
		candidates = append(candidates, b.session.candidate(m))
	}
	return candidates
}

// Members returns the target list's members as candidates, in list order.
// Members the catalog no longer knows are returned with only their id.
func (s *Session) Members(ctx context.Context, catalog Fetcher) ([]Candidate, error) {
	if s.state != StateActive {
		return nil, ErrSessionClosed
	}
	candidates := make([]Candidate, 0, len(s.order))
	if len(s.order) == 0 {
		return candidates, nil
	}

	mods, err := catalog.FetchByIDs(ctx, s.order)
	if err != nil {
		return nil, err
	}
	byRef := make(map[string]modlist.RemoteMod, len(mods)*2)
	for _, m := range mods {
		byRef[m.ID] = m
		if m.Slug != "" {
			byRef[m.Slug] = m
		}
	}

	for _, ref := range s.order {
		m, ok := byRef[ref]
		if !ok {
			m = modlist.RemoteMod{ID: ref, Title: ref}
		}
		m.ID = ref
		candidates = append(candidates, s.candidate(m))
	}
	return candidates, nil
}

func (s *Session) candidate(m modlist.RemoteMod) Candidate {
	return Candidate{
		RemoteMod:  m,
		Selectable: s.Selectable(m.ID),
		Selected:   s.IsSelected(m.ID),
	}
}
