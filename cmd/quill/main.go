package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/nebari-dev/quill/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - role-gated article publishing server",
	Long: `Quill serves an article API where admins, editors and viewers see and
change articles according to their role. Anonymous visitors read published
articles only.`,
	Example: `  # Start the API server
  quill serve

  # Prepare the database and create the first administrator
  quill migrate
  quill create-admin --email admin@example.com`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
