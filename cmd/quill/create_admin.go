package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nebari-dev/quill/internal/db"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. The password is read from the
terminal unless --password is given.`,
	Example: `  quill create-admin --email admin@example.com --name "Site Admin"`,
	Args:    cobra.NoArgs,
	RunE:    runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Administrator email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "Display name (default: Administrator)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (prompted when omitted)")
	_ = createAdminCmd.MarkFlagRequired("email")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("--password is required when stdin is not a terminal")
		}
		fmt.Print("Password: ")
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(passBytes)
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(database)

	user, err := db.CreateAdmin(database, db.AdminSeed{Email: adminEmail, Password: password, Name: adminName})
	if err != nil {
		return err
	}

	fmt.Printf("Created administrator %s (%s)\n", user.Email, user.ID)
	return nil
}
