package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/biofert/core/cmd/api/commands"
)

// @title Biofert Site API
// @version 1.0
// @description Content, events, uploads and contact form for the Biofert company website

// @contact.name Biofert Web Team
// @contact.email web@biofert.co.ke

// @host localhost:5000
// @BasePath /api

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
// @description Shared admin secret required on every mutating route.

func main() {
	rootCmd := &cobra.Command{
		Use:   "biofert",
		Short: "Biofert site API server",
		Long:  `Biofert serves the company website content, lets the site admin manage events and uploads, and relays contact form inquiries by email.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewContentCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
