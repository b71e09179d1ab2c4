package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "Lists or searches users in the remote directory.",
	Long: `Fetches one page of users from the remote directory, optionally filtered
by a free-text search. Listings go straight to the remote directory and do
not see uncommitted users of the current unit of work.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		search, _ := cmd.Flags().GetString("search")
		countOnly, _ := cmd.Flags().GetBool("count")
		realm := viper.GetString("realm")

		provider := newProvider()
		session := directory.NewSession()

		if countOnly {
			count, err := provider.UsersCount(ctx, realm)
			if err != nil {
				slog.Error("Failed to count users", "error", err)
				os.Exit(1)
			}
			fmt.Printf("%d\n", count)
			return
		}

		var (
			users []*directory.UserAdapter
			err   error
		)
		if search != "" {
			users, err = provider.SearchForUser(ctx, session, realm, search, offset, limit)
		} else {
			users, err = provider.Users(ctx, session, realm, offset, limit)
		}
		if err != nil {
			slog.Error("Failed to list users", "error", err)
			os.Exit(1)
		}

		slog.Info("Listed users", "realm", realm, "count", len(users))
		for _, user := range users {
			fmt.Printf("%s\t%s\t%s\n", user.ID(), user.Username(), user.Email())
		}
	},
}

func init() {
	listUsersCmd.Flags().Int("offset", 0, "Offset of the page to fetch.")
	listUsersCmd.Flags().Int("limit", 100, "Size of the page to fetch.")
	listUsersCmd.Flags().String("search", "", "Free-text search filter.")
	listUsersCmd.Flags().Bool("count", false, "Print the user count instead of a listing.")
}
