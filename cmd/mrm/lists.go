package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/mrm/internal/modlist"
)

func newListsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show your mod lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := a.store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("Your Mod Lists"))
			if len(lists) == 0 {
				fmt.Fprintln(out, dimStyle.Render("  no lists yet, create one with 'mrm list create <name>'"))
				return nil
			}
			for _, l := range lists {
				fmt.Fprint(out, "  ")
				printList(out, l)
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Create, rename, delete, or show a mod list",
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty mod list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Create(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Created ")
			printList(cmd.OutOrStdout(), l)
			return nil
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <list> <new name>",
		Short: "Rename a mod list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Lookup(args[0])
			if err != nil {
				return err
			}
			l, err = a.store.Rename(l.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Renamed to ")
			printList(cmd.OutOrStdout(), l)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <list>",
		Short: "Delete a mod list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Lookup(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Delete(l.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", l.Name)
			return nil
		},
	}

	var offline bool
	showCmd := &cobra.Command{
		Use:   "show <list>",
		Short: "Show the mods in a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Lookup(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printList(out, l)
			if len(l.Mods) == 0 {
				return nil
			}

			byID := map[string]modlist.RemoteMod{}
			if !offline {
				mods, err := a.catalog.FetchByIDs(cmd.Context(), l.Mods)
				if err != nil && !errors.Is(err, modlist.ErrCatalogUnavailable) {
					return err
				}
				if err != nil {
					a.logger.Warn("showing ids only", "error", err)
				}
				for _, m := range mods {
					byID[m.ID] = m
					if m.Slug != "" {
						byID[m.Slug] = m
					}
				}
			}
			for _, ref := range l.Mods {
				m, ok := byID[ref]
				if !ok {
					m = modlist.RemoteMod{ID: ref}
				}
				printMod(out, m)
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&offline, "offline", false, "Do not look up titles in the catalog")

	listCmd.AddCommand(createCmd, renameCmd, deleteCmd, showCmd)
	return listCmd
}
