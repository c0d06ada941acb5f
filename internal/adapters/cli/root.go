package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cosmicverge",
		Short: "Cosmic Verge tick engine - run the server or administer accounts",
		Long: `Cosmic Verge CLI runs the distributed tick engine and administers its
accounts and permission groups.

Examples:
  cosmicverge serve
  cosmicverge generate-assets ./assets/planets
  cosmicverge account --id 1 set-super-user
  cosmicverge permission-group create moderators
  cosmicverge permission-group add-service moderators account`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (defaults to ./config.yaml)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewGenerateAssetsCommand())
	rootCmd.AddCommand(NewAccountCommand())
	rootCmd.AddCommand(NewPermissionGroupCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
