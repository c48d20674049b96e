package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/runsheet/core/cmd/api/commands"
)

// @title Runsheet API
// @version 1.0
// @description Renders event schedules into styled HTML pages and PDF documents

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "runsheet",
		Short: "Runsheet schedule renderer",
		Long:  `Runsheet turns an event schedule payload and a style profile into grouped HTML pages, paginated PDFs and a home page linking them.`,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand(&configFile))
	rootCmd.AddCommand(commands.NewMigrateCommand(&configFile))
	rootCmd.AddCommand(commands.NewRenderCommand(&configFile))
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
