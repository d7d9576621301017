// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinerank/internal/api"
	"github.com/tomtom215/cinerank/internal/logging"
	"github.com/tomtom215/cinerank/internal/models"
	"github.com/tomtom215/cinerank/internal/recommend"
	"github.com/tomtom215/cinerank/internal/recommend/storage"
)

var (
	recSeeds        []int
	recUser         int
	recGenres       []string
	recAlpha        float64
	recLimit        int
	recExcludeRated bool
	recPopular      bool
	recVersion      int
	recJSON         bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank movies for seed movies and/or a user",
	Long: `Rank movies with the stored bundle.

Seeds alone rank by content similarity, a user alone by predicted rating,
and both together blend the two with --alpha as the content weight.

Examples:
  cinerank recommend --seeds 1,2355                # movies like Toy Story and A Bug's Life
  cinerank recommend --user 42 --exclude-rated     # unseen movies user 42 should like
  cinerank recommend --seeds 1 --user 42 --alpha 0.3 --genres Comedy
  cinerank recommend --popular --genres Horror     # most popular horror movies`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	f := recommendCmd.Flags()
	f.IntSliceVar(&recSeeds, "seeds", nil, "seed movie IDs")
	f.IntVar(&recUser, "user", 0, "user ID for the collaborative signal")
	f.StringSliceVar(&recGenres, "genres", nil, "only rank movies with one of these genres")
	f.Float64Var(&recAlpha, "alpha", 0, "content weight in [0, 1] (default recommend.default_alpha)")
	f.IntVar(&recLimit, "limit", 0, "number of results (default recommend.default_limit)")
	f.BoolVar(&recExcludeRated, "exclude-rated", false, "drop movies the user already rated")
	f.BoolVar(&recPopular, "popular", false, "list popular movies instead of ranking")
	f.IntVar(&recVersion, "version", 0, "bundle version (default artifacts.version, then latest)")
	f.BoolVar(&recJSON, "json", false, "print JSON")
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	engineCfg := engine.Config()

	limit := recLimit
	if limit == 0 {
		limit = engineCfg.DefaultLimit
	}

	if recPopular {
		popular := api.PopularMovies(engine, engine.Popular(limit, recGenres))
		if recJSON {
			return writeJSON(cmd, popular)
		}
		return printPopular(cmd, popular)
	}

	req := recommend.Request{
		SeedIDs:      recSeeds,
		Genres:       recGenres,
		Alpha:        engineCfg.DefaultAlpha,
		Limit:        limit,
		ExcludeRated: recExcludeRated,
	}
	if cmd.Flags().Changed("alpha") {
		req.Alpha = recAlpha
	}
	if cmd.Flags().Changed("user") {
		user := recUser
		req.UserID = &user
	}

	result, err := engine.Recommend(cmd.Context(), req)
	if err != nil {
		return err
	}
	resp := api.BuildRecommendResponse(engine, result)
	if recJSON {
		return writeJSON(cmd, resp)
	}
	return printRecommendations(cmd, resp)
}

func loadEngine(cmd *cobra.Command) (*recommend.Engine, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	version := recVersion
	if version == 0 {
		version = cfg.Artifacts.Version
	}
	bundle, meta, err := storage.LoadBundle(cmd.Context(), store, cfg.Artifacts.Name, version)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", cfg.Artifacts.Name, err)
	}
	return bundle.Engine(cfg.Recommend.Engine(), logging.WithComponent("engine"), meta)
}

func printRecommendations(cmd *cobra.Command, resp *models.RecommendResponse) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "# mode=%s candidates=%d model=v%d\n", resp.Mode, resp.CandidateCount, resp.ModelVersion)
	fmt.Fprintln(w, "RANK\tID\tSCORE\tTITLE\tGENRES")
	for i, rec := range resp.Items {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%s\t%s\n", i+1, rec.ID, rec.Score, rec.Title, strings.Join(rec.Genres, "|"))
	}
	return w.Flush()
}

func printPopular(cmd *cobra.Command, popular []models.PopularMovie) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRATINGS\tMEAN\tTITLE")
	for _, p := range popular {
		fmt.Fprintf(w, "%d\t%d\t%.2f\t%s\n", p.ID, p.RatingCount, p.MeanRating, p.Title)
	}
	return w.Flush()
}
