package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var lookupUserCmd = &cobra.Command{
	Use:   "lookup-user",
	Short: "Looks up a single user by username, email or id.",
	Long: `Resolves a user through the directory facade: the pending-write cache of
the current unit of work is consulted first, then the remote directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		id, _ := cmd.Flags().GetString("id")
		realm := viper.GetString("realm")

		provider := newProvider()
		session := directory.NewSession()

		var (
			user *directory.UserAdapter
			err  error
		)
		switch {
		case username != "":
			user, err = provider.UserByUsername(ctx, session, realm, username)
		case email != "":
			user, err = provider.UserByEmail(ctx, session, realm, email)
		case id != "":
			user, err = provider.UserByID(ctx, session, realm, id)
		default:
			slog.Error("One of --username, --email or --id must be given.")
			os.Exit(1)
		}
		if err != nil {
			slog.Error("Lookup failed", "error", err)
			os.Exit(1)
		}
		if user == nil {
			slog.Info("User not found", "realm", realm)
			os.Exit(1)
		}

		printUser(user)
	},
}

func init() {
	lookupUserCmd.Flags().String("username", "", "Username to look up.")
	lookupUserCmd.Flags().String("email", "", "Mail address to look up.")
	lookupUserCmd.Flags().String("id", "", "Storage-scoped user id to look up.")
}
