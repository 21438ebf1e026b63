// Package cli implements deliveryctl, an operator tool that reads reports
// and manages orders directly against the store.
package cli

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/app"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
)

var (
	version = "dev"
	commit  = "none"
)

// Opener returns the services commands run against and a func releasing
// them.
type Opener func(ctx context.Context) (handler.Services, func(), error)

type storeFlags struct {
	driver      string
	sqlitePath  string
	databaseURL string
}

// configOpener loads the API configuration and lets flags override the
// store selection.
func configOpener(f *storeFlags) Opener {
	return func(ctx context.Context) (handler.Services, func(), error) {
		cfg, err := app.LoadEnvConfig()
		if err != nil {
			return handler.Services{}, nil, err
		}
		if f.driver != "" {
			cfg.Store.Driver = f.driver
		}
		if f.sqlitePath != "" {
			cfg.Store.SQLitePath = f.sqlitePath
		}
		if f.databaseURL != "" {
			cfg.DatabaseURL = f.databaseURL
		}
		if err := cfg.ValidateStore(); err != nil {
			return handler.Services{}, nil, err
		}

		store, err := app.OpenStore(ctx, zap.NewNop(), cfg)
		if err != nil {
			return handler.Services{}, nil, errors.Wrap(err, "open store")
		}
		return store.Services(cfg.Orders), store.Close, nil
	}
}

func newRootCmd(open Opener) *cobra.Command {
	var flags storeFlags
	if open == nil {
		open = configOpener(&flags)
	}

	cmd := &cobra.Command{
		Use:           "deliveryctl",
		Short:         "Operate the delivery backend",
		Long:          "deliveryctl reads sales reports and manages orders directly against the delivery store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.driver, "store", "", "Store driver: postgres or sqlite (default from config)")
	cmd.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", "", "SQLite database file")
	cmd.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "", "PostgreSQL connection URL")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newReportCmd(open))
	cmd.AddCommand(newOrderCmd(open))
	cmd.AddCommand(newMCPCmd(open))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("deliveryctl %s (%s)\n", version, commit)
		},
	}
}

// NewRootCmd returns the root command running against the services open
// returns.
func NewRootCmd(open Opener) *cobra.Command {
	return newRootCmd(open)
}

// Execute runs deliveryctl with the configured store.
func Execute() error {
	return newRootCmd(nil).Execute()
}

// withServices opens the services for one command run.
func withServices(cmd *cobra.Command, open Opener, fn func(ctx context.Context, s handler.Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, s)
}
