package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/mrm/internal/manifest"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <list>",
		Short: "Write a list as a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.store.Lookup(args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return manifest.NewEmitter(cmd.OutOrStdout()).Emit(l)
			}

			outFile, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating manifest file: %w", err)
			}
			defer outFile.Close()

			if err := manifest.NewEmitter(outFile).Emit(l); err != nil {
				return fmt.Errorf("writing manifest: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", l.Name, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create a list from a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening manifest: %w", err)
			}
			defer f.Close()

			m, err := manifest.NewParser(f).Parse()
			if err != nil {
				return err
			}
			l, err := manifest.Import(cmd.Context(), a.store, a.catalog, m)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Imported ")
			printList(cmd.OutOrStdout(), l)
			return nil
		},
	}
}
