// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/logging"
)

var (
	modelsJSON bool
	deleteName string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List stored bundles",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete VERSION",
	Short: "Delete one stored bundle version",
	Long: `Delete one bundle version from artifacts.dir. A running server keeps
serving the engine it already loaded; the next reload picks the newest
remaining version.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsDelete,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print JSON")
	modelsDeleteCmd.Flags().StringVar(&deleteName, "name", "", "bundle name (overrides artifacts.name)")
}

func runModels(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	list, err := store.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	if modelsJSON {
		return writeJSON(cmd, list)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tITEMS\tUSERS\tRATINGS\tSIZE\tSAVED")
	for _, m := range list {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			m.Name, m.Version, m.ItemCount, m.UserCount, m.RatingCount, m.SizeBytes, m.SavedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil || version <= 0 {
		return fmt.Errorf("invalid version %q", args[0])
	}
	name := cfg.Artifacts.Name
	if deleteName != "" {
		name = deleteName
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Delete(cmd.Context(), name, version); err != nil {
		return err
	}
	logging.Info().Str("bundle", name).Int("version", version).Msg("Bundle deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s v%d\n", name, version)
	return nil
}
