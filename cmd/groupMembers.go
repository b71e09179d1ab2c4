package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var groupMembersCmd = &cobra.Command{
	Use:   "group-members <group>",
	Short: "Lists the members of a named group.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		group := args[0]
		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		realm := viper.GetString("realm")

		provider := newProvider()
		session := directory.NewSession()

		members, err := provider.GroupMembers(ctx, session, realm, group, offset, limit)
		if err != nil {
			slog.Error("Failed to list group members", "group", group, "error", err)
			os.Exit(1)
		}

		slog.Info("Listed group members", "realm", realm, "group", group, "count", len(members))
		for _, member := range members {
			fmt.Printf("%s\t%s\t%s\n", member.ID(), member.Username(), member.Email())
		}
	},
}

func init() {
	groupMembersCmd.Flags().Int("offset", 0, "Offset of the page to fetch.")
	groupMembersCmd.Flags().Int("limit", 100, "Size of the page to fetch.")
}
