package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var beerCmd = &cobra.Command{
	Use:   "beer <name>",
	Short: "Look up a beer in the cache, fetching it if stale or missing",
	Args:  cobra.ExactArgs(1),
	RunE:  runBeer,
}

func init() {
	rootCmd.AddCommand(beerCmd)
}

func runBeer(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	defer func() { _ = a.beers.Close() }()

	rec, err := a.beers.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
