package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOptionsCmd(a *app) *cobra.Command {
	optionsCmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change options",
	}

	downloadPathCmd := &cobra.Command{
		Use:   "download-path [path]",
		Short: "Show or set where mods are downloaded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.store.SetDownloadPath(args[0]); err != nil {
					return err
				}
			}
			path, err := a.store.DownloadPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloads Path: %s\n", nameStyle.Render(path))
			return nil
		},
	}

	optionsCmd.AddCommand(downloadPathCmd)
	return optionsCmd
}
