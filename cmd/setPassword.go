package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/IdentityFoundry/httpdir-bridge/pkg/directory"
)

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Updates a user's password through a deferred directory write.",
	Long: `Installs the new password on the in-memory user and commits the unit of
work; the remote directory receives the change with the single deferred write
at commit time.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		realm := viper.GetString("realm")

		if username == "" || password == "" {
			slog.Error("--username and --password are required.")
			os.Exit(1)
		}

		provider := newProvider()
		auditLog := newAuditLog()
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

		updated, err := provider.UpdateCredential(ctx, session, realm, user, directory.Credential{
			Type:   directory.CredentialTypePassword,
			Secret: password,
		})
		if err != nil || !updated {
			logAndAudit(auditLog, "SetPassword", username, "fatal", "Credential update was refused", "error", err)
		}

		if err := session.Commit(ctx); err != nil {
			logAndAudit(auditLog, "SetPassword", username, "fatal", "Commit of the unit of work failed", "error", err)
		}

		logAndAudit(auditLog, "SetPassword", username, "info", "Password update committed.")
		slog.Info("Password update committed", "username", username)
	},
}

func init() {
	setPasswordCmd.Flags().String("username", "", "Username of the user to update.")
	setPasswordCmd.Flags().String("password", "", "New password.")
}
