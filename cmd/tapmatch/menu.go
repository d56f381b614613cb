package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var menuVenue string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show a venue's resolved menu",
	Long:  `Resolve a venue's menu from its live source with local fallback and print it.`,
	RunE:  runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&menuVenue, "venue", "", "Venue name")
	_ = menuCmd.MarkFlagRequired("venue")
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	defer func() { _ = a.beers.Close() }()

	venue, err := a.index.Venue(menuVenue)
	if err != nil {
		return err
	}

	entries := a.menus.GetMenu(cmd.Context(), venue)
	if len(entries) == 0 {
		fmt.Printf("No menu available for %s\n", venue.VenueName)
		return nil
	}

	fmt.Printf("Menu at %s (%d items):\n", venue.VenueName, len(entries))
	for _, entry := range entries {
		beer := entry.Beer
		line := "  " + beer.Name
		if beer.Style != "" {
			line += "  " + beer.Style
		}
		if beer.ABV != nil {
			line += fmt.Sprintf("  %.1f%% ABV", *beer.ABV)
		}
		if beer.IBU != nil {
			line += fmt.Sprintf("  %.0f IBU", *beer.IBU)
		}
		line += "  [" + entry.Source + "]"
		fmt.Println(line)
	}
	return nil
}
