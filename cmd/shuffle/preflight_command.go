package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shuffle/internal/config"
	"shuffle/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check that a batch can run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := ""
			if strings.TrimSpace(dest) != "" {
				if target, err = config.ExpandPath(strings.TrimSpace(dest)); err != nil {
					return fmt.Errorf("resolve destination: %w", err)
				}
			}

			results := preflight.RunAll(cmd.Context(), cfg, target)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "OK"
				if !result.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory to check (defaults to paths.download_dir)")
	return cmd
}
