package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	locationsCountry string
	locationsState   string
	locationsCity    string
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Browse the venue hierarchy",
	Long: `Browse countries, states, cities, and venues from the venue table.
With no flags the country list is printed; each flag narrows one level.
An explicitly empty --state selects venues with no recorded state.`,
	RunE: runLocations,
}

func init() {
	locationsCmd.Flags().StringVar(&locationsCountry, "country", "", "Country filter")
	locationsCmd.Flags().StringVar(&locationsState, "state", "", "State filter")
	locationsCmd.Flags().StringVar(&locationsCity, "city", "", "City filter")
	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	defer func() { _ = a.beers.Close() }()

	switch {
	case locationsCity != "" || cmd.Flags().Changed("state"):
		venues := a.index.Venues(locationsCountry, locationsState, locationsCity)
		for _, v := range venues {
			fmt.Printf("%s  (%s, %s, %s)\n", v.VenueName, v.City, v.StateProvince, v.Country)
		}
	case locationsCountry != "":
		for _, s := range a.index.States(locationsCountry) {
			fmt.Println(s)
		}
	default:
		for _, c := range a.index.Countries() {
			fmt.Println(c)
		}
	}
	return nil
}
