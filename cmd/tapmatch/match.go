package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	matchVenue   string
	matchProfile string
	matchTop     int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank a venue's menu against a stored profile",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchVenue, "venue", "", "Venue name")
	matchCmd.Flags().StringVar(&matchProfile, "profile", "", "Stored profile name")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "Only show the top N results (0 shows all)")
	_ = matchCmd.MarkFlagRequired("venue")
	_ = matchCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	defer func() { _ = a.beers.Close() }()

	p, err := a.profiles.Get(matchProfile)
	if err != nil {
		return err
	}
	venue, err := a.index.Venue(matchVenue)
	if err != nil {
		return err
	}

	entries := a.menus.GetMenu(cmd.Context(), venue)
	if len(entries) == 0 {
		fmt.Printf("No menu available for %s\n", venue.VenueName)
		return nil
	}

	ranked := a.engine.RankMenu(p, entries)
	if matchTop > 0 && len(ranked) > matchTop {
		ranked = ranked[:matchTop]
	}

	fmt.Printf("Matches at %s for %s:\n", venue.VenueName, p.Name)
	for i, result := range ranked {
		beer := result.Entry.Beer
		line := fmt.Sprintf("%2d. %-40s %.3f", i+1, beer.Name, result.Score)
		if beer.Style != "" {
			line += "  " + beer.Style
		}
		if beer.ABV != nil {
			line += fmt.Sprintf("  %.1f%% ABV", *beer.ABV)
		}
		if beer.IBU != nil {
			line += fmt.Sprintf("  %.0f IBU", *beer.IBU)
		}
		fmt.Println(line)
	}
	return nil
}
