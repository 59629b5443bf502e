package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/mrm/internal/downloader"
	"github.com/frederic-klein/mrm/internal/modlist"
	"github.com/frederic-klein/mrm/internal/resolver"
)

type target struct {
	gameVersion string
	loader      string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.gameVersion, "game-version", "g", "", "Game version, e.g. 1.20.1")
	cmd.Flags().StringVarP(&t.loader, "loader", "l", "", "Mod loader, e.g. fabric")
	_ = cmd.MarkFlagRequired("game-version")
	_ = cmd.MarkFlagRequired("loader")
}

// validate checks the pair against the tags the catalog publishes.
func (t *target) validate(ctx context.Context, a *app) error {
	versions, err := a.catalog.FetchGameVersions(ctx)
	if err != nil {
		return err
	}
	all := slices.Concat(versions.Release, versions.Snapshot, versions.Beta, versions.Alpha)
	if !slices.Contains(all, t.gameVersion) {
		return fmt.Errorf("game version %q: %w", t.gameVersion, modlist.ErrNotFound)
	}

	loaders, err := a.catalog.FetchLoaders(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(loaders, t.loader) {
		return fmt.Errorf("loader %q (known: %s): %w", t.loader, strings.Join(loaders, ", "), modlist.ErrNotFound)
	}
	return nil
}

// resolve returns the list and the ids of its members compatible with t.
func (t *target) resolve(ctx context.Context, a *app, ref string) (modlist.ModList, []string, error) {
	l, err := a.store.Lookup(ref)
	if err != nil {
		return modlist.ModList{}, nil, err
	}
	if err := t.validate(ctx, a); err != nil {
		return modlist.ModList{}, nil, err
	}
	ids, err := resolver.NewResolver(a.catalog, a.logger).Resolve(ctx, t.gameVersion, t.loader, l.Mods)
	if err != nil {
		return modlist.ModList{}, nil, err
	}
	return l, ids, nil
}

func newResolveCmd(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "resolve <list>",
		Short: "List the mods of a list compatible with a game version and loader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ids, err := t.resolve(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d of %d mods in %s support %s on %s", len(ids), l.ModCount(), l.Name, t.loader, t.gameVersion)))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
	t.register(cmd)
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var t target
	var dir string
	cmd := &cobra.Command{
		Use:   "download <list>",
		Short: "Download the compatible mods of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ids, err := t.resolve(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			dest := dir
			if dest == "" {
				if dest, err = a.store.DownloadPath(); err != nil {
					return err
				}
			}

			dl := downloader.NewDownloader(a.workers, a.catalog, a.logger)
			results := dl.Fetch(cmd.Context(), ids, t.gameVersion, t.loader, dest)

			out := cmd.OutOrStdout()
			var downloaded, skipped, failed int
			for _, r := range results {
				switch {
				case r.Error != nil:
					failed++
					fmt.Fprintf(out, "  %s %s: %v\n", disabledStyle.Render("✗"), r.Job.ModID, r.Error)
				case r.Skipped:
					skipped++
					fmt.Fprintf(out, "  %s %s %s\n", dimStyle.Render("="), r.Job.ModID, dimStyle.Render("already present"))
				default:
					downloaded++
					fmt.Fprintf(out, "  %s %s -> %s\n", nameStyle.Render("✓"), r.Job.ModID, r.Job.DestPath)
				}
			}
			fmt.Fprintf(out, "Downloaded %d of %d compatible mods from %s (%d already present, %d incompatible) into %s\n",
				downloaded, len(ids), l.Name, skipped, l.ModCount()-len(ids), dest)
			if failed > 0 {
				return fmt.Errorf("%d downloads failed", failed)
			}
			return nil
		},
	}
	t.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Download directory (default: configured download path)")
	return cmd
}

func newVersionsCmd(a *app) *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Show the game versions known to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := a.catalog.FetchGameVersions(cmd.Context())
			if err != nil {
				return err
			}
			groups := []struct {
				name     string
				versions []string
			}{
				{"release", versions.Release},
				{"snapshot", versions.Snapshot},
				{"beta", versions.Beta},
				{"alpha", versions.Alpha},
			}
			out := cmd.OutOrStdout()
			matched := false
			for _, g := range groups {
				if channel != "all" && channel != g.name {
					continue
				}
				matched = true
				fmt.Fprintln(out, titleStyle.Render(g.name))
				fmt.Fprintf(out, "  %s\n", strings.Join(g.versions, " "))
			}
			if !matched {
				return fmt.Errorf("unknown channel %q (release, snapshot, beta, alpha, all)", channel)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&channel, "type", "t", "release", "Channel: release, snapshot, beta, alpha, or all")
	return cmd
}

func newLoadersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loaders",
		Short: "Show the mod loaders known to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaders, err := a.catalog.FetchLoaders(cmd.Context())
			if err != nil {
				return err
			}
			for _, l := range loaders {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}
