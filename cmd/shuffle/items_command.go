package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuffle/internal/catalog"
	"shuffle/internal/report"
)

func newItemsCommand() *cobra.Command {
	var jsonOut bool
	var only []string

	cmd := &cobra.Command{
		Use:         "items <manifest>",
		Short:       "List the items in a manifest",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := catalog.LoadManifest(args[0])
			if err != nil {
				return err
			}
			items, err := catalog.Select(manifest.Items, only)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, items)
			}
			printManifestHeader(cmd, manifest, len(items))
			fmt.Fprintln(cmd.OutOrStdout(), report.RenderItems(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output items as JSON")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Limit to item ids or 1-based positions")
	return cmd
}

func printManifestHeader(cmd *cobra.Command, manifest *catalog.Manifest, count int) {
	out := cmd.OutOrStdout()
	source := manifest.Source
	if source == "" {
		source = "(unnamed)"
	}
	fmt.Fprintf(out, "%s: %s\n", manifest.Kind.Display(), source)
	fmt.Fprintf(out, "Items: %d\n", count)
}
