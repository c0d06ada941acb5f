package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmicverge/tickengine/internal/adapters/persistence"
	"github.com/cosmicverge/tickengine/internal/application/session"
	"github.com/cosmicverge/tickengine/internal/infrastructure/config"
	"github.com/cosmicverge/tickengine/internal/infrastructure/database"
)

// NewPermissionGroupCommand creates the permission-group command and its
// create/view/add/remove/add-service/remove-service subcommands.
func NewPermissionGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission-group <subcommand> <name>",
		Short: "Create and administer a permission group",
		Long: `The subcommand comes first and the group name follows it; the
"permission-group <name> <subcommand>" order is not accepted.

Examples:
  cosmicverge permission-group create moderators
  cosmicverge permission-group view moderators
  cosmicverge permission-group add moderators account:view
  cosmicverge permission-group remove moderators account:view
  cosmicverge permission-group add-service moderators account
  cosmicverge permission-group remove-service moderators account`,
	}

	cmd.AddCommand(newPermissionGroupCreateCommand())
	cmd.AddCommand(newPermissionGroupViewCommand())
	cmd.AddCommand(newPermissionGroupAddCommand())
	cmd.AddCommand(newPermissionGroupRemoveCommand())
	cmd.AddCommand(newPermissionGroupAddServiceCommand())
	cmd.AddCommand(newPermissionGroupRemoveServiceCommand())

	return cmd
}

func openPermissionGroupStore() (*persistence.GormPermissionGroupStore, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return persistence.NewGormPermissionGroupStore(db), nil
}

func printPermissionGroup(name string, store *persistence.GormPermissionGroupStore) error {
	group, err := store.View(context.Background(), name)
	if err != nil {
		return err
	}
	fmt.Printf("Permission Group: %s\n", group.Name)
	fmt.Println("Current Permissions:")
	if len(group.Permissions) == 0 {
		fmt.Println("  (none)")
	}
	for _, perm := range group.Permissions {
		fmt.Printf("  %s\n", perm)
	}
	return nil
}

func newPermissionGroupCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new, empty permission group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			if err := store.Create(context.Background(), args[0]); err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}

func newPermissionGroupViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <name>",
		Short: "View a permission group's current grants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}

func newPermissionGroupAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <permission>",
		Short: "Grant a single permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			if err := store.AddPermission(context.Background(), args[0], session.Permission(args[1])); err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}

func newPermissionGroupRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name> <permission>",
		Short: "Revoke a single permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			if err := store.RemovePermission(context.Background(), args[0], session.Permission(args[1])); err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}

func newPermissionGroupAddServiceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-service <name> <service>",
		Short: "Grant every permission of a service at once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			if err := store.AddServicePermissions(context.Background(), args[0], session.Service(args[1])); err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}

func newPermissionGroupRemoveServiceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-service <name> <service>",
		Short: "Revoke every permission of a service at once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openPermissionGroupStore()
			if err != nil {
				return err
			}
			if err := store.RemoveServicePermissions(context.Background(), args[0], session.Service(args[1])); err != nil {
				return err
			}
			return printPermissionGroup(args[0], store)
		},
	}
}
