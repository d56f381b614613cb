package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tapmatch/tapmatch/internal/profile"
)

var (
	buildProfileCSV  string
	buildProfileName string
)

var buildProfileCmd = &cobra.Command{
	Use:   "build-profile",
	Short: "Build a taste profile from a rating-history CSV",
	Long:  `Parse a rating-history export, derive weighted style and flavor preferences, and persist the profile under the configured profiles directory.`,
	RunE:  runBuildProfile,
}

func init() {
	buildProfileCmd.Flags().StringVar(&buildProfileCSV, "csv", "", "Path to the rating-history CSV export")
	buildProfileCmd.Flags().StringVar(&buildProfileName, "name", "", "Display name for the profile")
	_ = buildProfileCmd.MarkFlagRequired("csv")
	_ = buildProfileCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(buildProfileCmd)
}

func runBuildProfile(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	defer func() { _ = a.beers.Close() }()

	f, err := os.Open(buildProfileCSV)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := profile.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}

	p, err := a.builder.Build(cmd.Context(), buildProfileName, rows)
	if err != nil {
		return err
	}
	if err := a.profiles.Save(p); err != nil {
		return err
	}

	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
