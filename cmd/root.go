package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Variable to hold the value of the debug flag
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "httpdir-bridge",
	Short: "A bridge between a host identity runtime and a remote HTTP user directory.",
	Long: `httpdir-bridge adapts an externalized user management service to the
lookup, search and credential contracts of a host identity runtime. Each
command runs its operations inside one unit of work against the remote
directory.`,
}

// ExecuteContext executes the root command with a given context.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.httpdir.yaml)")
	// Define the global --debug flag
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug level logging.")
	rootCmd.PersistentFlags().String("realm", "master", "Realm the users belong to.")
	viper.BindPFlag("realm", rootCmd.PersistentFlags().Lookup("realm"))

	// Add sub-commands here
	rootCmd.AddCommand(lookupUserCmd)
	rootCmd.AddCommand(listUsersCmd)
	rootCmd.AddCommand(groupMembersCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(validatePasswordCmd)
	rootCmd.AddCommand(setPasswordCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".httpdir")
	}

	viper.SetEnvPrefix("HTTPDIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	}
}
