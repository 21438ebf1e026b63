package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/db"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/app"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/seed"
)

func main() {
	var (
		databaseURL string
		driver      string
		sqlitePath  string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&driver, "store", app.DriverPostgres, "store driver: postgres or sqlite")
	flag.StringVar(&sqlitePath, "sqlite-path", "delivery.db", "SQLite database file")
	flag.StringVar(&catalogFile, "catalog", "", "path to catalog JSON file (default: embedded demo catalog)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	cfg := &app.Config{
		DatabaseURL: databaseURL,
		Store:       app.StoreConfig{Driver: driver, SQLitePath: sqlitePath},
		Orders:      app.OrdersConfig{MaxQuantity: 100},
	}
	if err := cfg.ValidateStore(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, cfg *app.Config, catalogFile string) error {
	data := db.Catalog
	if catalogFile != "" {
		slog.Info("reading catalog file", slog.String("path", catalogFile))

		var err error
		if data, err = os.ReadFile(catalogFile); err != nil {
			return errors.Wrap(err, "read catalog file")
		}
	}
	catalog, err := seed.Parse(data)
	if err != nil {
		return err
	}

	slog.Info("opening store", slog.String("driver", cfg.Store.Driver))

	lg := zap.NewNop()
	store, err := app.OpenStore(ctx, lg, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	svc := store.Services(cfg.Orders)
	st, err := seed.Apply(zctx.Base(ctx, lg), seed.Services{
		Customers:   svc.Customers,
		Restaurants: svc.Restaurants,
		Products:    svc.Products,
	}, catalog)
	if err != nil {
		return errors.Wrap(err, "apply catalog")
	}

	slog.Info("seeded catalog",
		slog.Int("customers", st.Customers),
		slog.Int("skipped_customers", st.SkippedCustomers),
		slog.Int("restaurants", st.Restaurants),
		slog.Int("products", st.Products),
		slog.Bool("skipped_catalog", st.SkippedCatalog),
	)
	return nil
}
