package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/mrm/internal/modlist"
	"github.com/frederic-klein/mrm/internal/selection"
)

func newSearchCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.catalog.Search(cmd.Context(), page-1, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Page %d of %d (%d results)", page, max(result.TotalPages(), 1), result.TotalHits)))
			for _, m := range result.Hits {
				printMod(out, m)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page, starting at 1")
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "browse <list> [query]",
		Short: "Browse catalog results as candidates for a list",
		Long:  "Shows one page of search results marked for the given list: [-] is already a member and cannot be added.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Lookup(args[0])
			if err != nil {
				return err
			}
			sess, err := selection.Start(a.store, selection.FlowAdd, l.ID)
			if err != nil {
				return err
			}
			defer sess.Cancel()

			b := sess.Browse(a.catalog, strings.Join(args[1:], " "))
			if err := b.GoTo(cmd.Context(), page-1); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Candidates for %s, page %d of %d", l.Name, b.Page()+1, max(b.TotalPages(), 1))))
			for _, c := range b.Candidates() {
				printCandidate(out, c)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page, starting at 1")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <list> <mod id>...",
		Short: "Add mods to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlow(cmd, selection.FlowAdd, args[0], args[1:])
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <list> <mod id>...",
		Short: "Remove mods from a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFlow(cmd, selection.FlowRemove, args[0], args[1:])
		},
	}
}

// runFlow selects ids in a fresh session and confirms it. Any id that the
// flow does not accept cancels the whole batch.
func (a *app) runFlow(cmd *cobra.Command, flow selection.Flow, ref string, ids []string) error {
	l, err := a.store.Lookup(ref)
	if err != nil {
		return err
	}
	sess, err := selection.Start(a.store, flow, l.ID)
	if err != nil {
		return err
	}

	if flow == selection.FlowAdd {
		canonical, mods, err := a.canonicalIDs(cmd, ids)
		if err != nil {
			sess.Cancel()
			return err
		}
		sess.Recognize(mods...)
		ids = canonical
	}

	for _, id := range ids {
		if sess.IsSelected(id) {
			continue
		}
		if err := sess.Toggle(id); err != nil {
			sess.Cancel()
			return err
		}
	}

	applied, err := sess.Confirm()
	if err != nil {
		sess.Cancel()
		return err
	}

	verb := "Added"
	if flow == selection.FlowRemove {
		verb = "Removed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d mods: %s\n", verb, len(applied), strings.Join(applied, ", "))
	return nil
}

// canonicalIDs makes sure every ref exists in the catalog before a list is
// changed, so catalog failures abort the flow before any write. Slugs are
// replaced by the project id they name.
func (a *app) canonicalIDs(cmd *cobra.Command, refs []string) ([]string, []modlist.RemoteMod, error) {
	mods, err := a.catalog.FetchByIDs(cmd.Context(), refs)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]string, len(mods)*2)
	for _, m := range mods {
		known[m.ID] = m.ID
		if m.Slug != "" {
			known[m.Slug] = m.ID
		}
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, ok := known[ref]
		if !ok {
			return nil, nil, fmt.Errorf("mod %q: %w", ref, modlist.ErrNotFound)
		}
		ids = append(ids, id)
	}
	return ids, mods, nil
}
