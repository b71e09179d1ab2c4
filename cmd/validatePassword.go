package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var validatePasswordCmd = &cobra.Command{
	Use:   "validate-password",
	Short: "Validates a user's password against the remote directory.",
	Long: `Resolves the user and checks the given password through the directory's
validation endpoint. Verification fails closed: any remote failure counts as
an invalid password.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		realm := viper.GetString("realm")

		if username == "" {
			slog.Error("--username is required.")
			os.Exit(1)
		}

		provider := newProvider()
		session := directory.NewSession()

		user, err := provider.UserByUsername(ctx, session, realm, username)
		if err != nil {
			slog.Error("Lookup failed", "username", username, "error", err)
			os.Exit(1)
		}
		if user == nil {
			slog.Info("User not found", "username", username, "realm", realm)
			os.Exit(1)
		}

		valid, err := provider.IsValid(ctx, session, realm, user, directory.Credential{
			Type:   directory.CredentialTypePassword,
			Secret: password,
		})
		if err != nil {
			slog.Error("Validation failed", "username", username, "error", err)
			os.Exit(1)
		}

		fmt.Printf("password valid: %t\n", valid)
		if !valid {
			os.Exit(1)
		}
	},
}

func init() {
	validatePasswordCmd.Flags().String("username", "", "Username of the user to validate.")
	validatePasswordCmd.Flags().String("password", "", "Password to validate.")
}
