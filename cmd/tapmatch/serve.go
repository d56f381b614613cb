package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapmatch/tapmatch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for locations, profiles, menus, beer lookups, and matching.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:     port,
		Index:    a.index,
		Profiles: a.profiles,
		Builder:  a.builder,
		Beers:    a.beers,
		Menus:    a.menus,
		Engine:   a.engine,
		Watcher:  a.watcher,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
