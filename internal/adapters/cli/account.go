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

// NewAccountCommand creates the account command with its super-user
// subcommands.
func NewAccountCommand() *cobra.Command {
	var (
		id     int64
		twitch string
	)

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Grant or revoke super-user status on an account",
		Long: `Resolve an account by --id or --twitch, then flip its super-user flag.

Examples:
  cosmicverge account --id 1 set-super-user
  cosmicverge account --twitch somename set-normal-user`,
	}

	cmd.PersistentFlags().Int64Var(&id, "id", 0, "Account id")
	cmd.PersistentFlags().StringVar(&twitch, "twitch", "", "Twitch username")

	cmd.AddCommand(newAccountSetSuperUserCommand(&id, &twitch))
	cmd.AddCommand(newAccountSetNormalUserCommand(&id, &twitch))

	return cmd
}

func newAccountSetSuperUserCommand(id *int64, twitch *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-super-user",
		Short: "Grant super-user status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountCommand(*id, *twitch, true)
		},
	}
}

func newAccountSetNormalUserCommand(id *int64, twitch *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-normal-user",
		Short: "Revoke super-user status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountCommand(*id, *twitch, false)
		},
	}
}

func runAccountCommand(id int64, twitch string, superUser bool) error {
	accountID, err := resolveAccountID(id, twitch)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	store := persistence.NewGormAccountStore(db)
	ctx := context.Background()

	if accountID == 0 {
		record, err := store.FindAccountByTwitchUsername(ctx, twitch)
		if err != nil {
			return err
		}
		accountID = int64(record.ID)
	}

	if err := store.SetSuperUser(ctx, session.AccountID(accountID), superUser); err != nil {
		return err
	}

	fmt.Printf("account %d super_user=%t\n", accountID, superUser)
	return nil
}

func resolveAccountID(id int64, twitch string) (int64, error) {
	if id == 0 && twitch == "" {
		return 0, fmt.Errorf("either --id or --twitch must be specified")
	}
	if id != 0 && twitch != "" {
		return 0, fmt.Errorf("--id and --twitch are mutually exclusive")
	}
	return id, nil
}
