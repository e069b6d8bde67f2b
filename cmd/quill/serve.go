package main

import (
	"fmt"
	"os"

	"github.com/nebari-dev/quill/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

// @title Quill API
// @version 1.0
// @description Role-gated article publishing API
// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Quill API server",
	Long: `Start the Quill API server.

Examples:
  quill serve                   # Run with configuration defaults
  quill serve --port 8080       # Override port

Environment variables:
  QUILL_SERVER_PORT         Server port (default: 5000)
  QUILL_SERVER_MODE         development or production
  QUILL_SERVER_FRONTEND_URL Allowed CORS origin
  QUILL_DATABASE_DRIVER     Database driver: sqlite, postgres
  QUILL_DATABASE_DSN        Database connection string
  QUILL_AUTH_JWT_SECRET     JWT signing secret
  QUILL_CACHE_TYPE          Identity cache: none, valkey
  ADMIN_EMAIL               Bootstrap admin email
  ADMIN_PASSWORD            Bootstrap admin password`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := server.Config{
		Port:    servePort,
		Version: Version,
	}

	if err := server.RunWithSignalHandling(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
