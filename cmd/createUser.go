package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Creates a new user within one unit of work.",
	Long: `Creates a principal in memory, proves it is visible to lookups inside the
same unit of work, then commits. The commit flushes exactly one deferred
create to the remote directory; directories without write support reject it
there, not earlier.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		firstName, _ := cmd.Flags().GetString("first-name")
		lastName, _ := cmd.Flags().GetString("last-name")
		realm := viper.GetString("realm")

		if username == "" {
			slog.Error("--username is required.")
			os.Exit(1)
		}

		provider := newProvider()
		auditLog := newAuditLog()
		session := directory.NewSession()

		user, err := provider.AddUser(ctx, session, realm, username)
		if err != nil {
			logAndAudit(auditLog, "CreateUser", username, "fatal", "Failed to create pending user", "error", err)
		}
		if email != "" {
			user.SetEmail(email)
		}
		if firstName != "" {
			user.SetFirstName(firstName)
		}
		if lastName != "" {
			user.SetLastName(lastName)
		}
		user.SetEnabled(true)

		// The user is not in the remote directory yet, but lookups in this
		// unit of work already resolve it.
		visible, err := provider.UserByUsername(ctx, session, realm, username)
		if err != nil || visible == nil {
			logAndAudit(auditLog, "CreateUser", username, "fatal", "Pending user is not visible in its own unit of work", "error", err)
		}
		slog.Info("Pending user visible in current unit of work", "username", visible.Username(), "persisted", visible.Persisted())

		if err := session.Commit(ctx); err != nil {
			logAndAudit(auditLog, "CreateUser", username, "fatal", "Commit of the unit of work failed", "error", err)
		}

		logAndAudit(auditLog, "CreateUser", username, "info", "Successfully created user.", "id", user.ID())
		printUser(user)
	},
}

func init() {
	createUserCmd.Flags().String("username", "", "Username of the new user.")
	createUserCmd.Flags().String("email", "", "Mail address of the new user.")
	createUserCmd.Flags().String("first-name", "", "First name of the new user.")
	createUserCmd.Flags().String("last-name", "", "Last name of the new user.")
}
