package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/config"
	"github.com/statutecheck/statutecheck/internal/store"
)

var resetUsername string
var resetPassword string

var resetAdminCmd = &cobra.Command{
	Use:   "resetadmin",
	Short: "Reset a user's password from the command line",
	Long: `Resetadmin overwrites the stored password hash for an account.
It exists for recovering a locked-out administrator, which is why the
username defaults to "admin", but it works for any account.

Examples:
  ./statutecheck resetadmin --password 'new-secret'
  ./statutecheck resetadmin --username jsmith --password 'new-secret'`,
	Run: runResetAdmin,
}

func init() {
	rootCmd.AddCommand(resetAdminCmd)

	resetAdminCmd.Flags().StringVarP(&resetUsername, "username", "u", "admin", "Account to reset")
	resetAdminCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "New password (required)")
	resetAdminCmd.MarkFlagRequired("password")
}

func runResetAdmin(cmd *cobra.Command, args []string) {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(resetPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	userStore := store.NewUserStore(db)
	found, err := userStore.SetPassword(ctx, resetUsername, hash, resetUsername)
	if err != nil {
		log.Fatalf("Failed to reset password: %v", err)
	}
	if !found {
		log.Fatalf("User %s not found", resetUsername)
	}

	log.Printf("Password reset for %s", resetUsername)
}
