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

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/app"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/customerimport"
)

func main() {
	var (
		databaseURL string
		driver      string
		sqlitePath  string
		capacity    uint
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&driver, "store", app.DriverPostgres, "store driver: postgres or sqlite")
	flag.StringVar(&sqlitePath, "sqlite-path", "delivery.db", "SQLite database file")
	flag.UintVar(&capacity, "capacity", 0, "expected number of records (sizes the duplicate filter)")
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: customer-import [flags] FILE.ndjson.gz...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}
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

	if err := run(ctx, cfg, files, capacity); err != nil {
		slog.Error("customer import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("customer import completed successfully")
}

func run(ctx context.Context, cfg *app.Config, files []string, capacity uint) error {
	slog.Info("importing customers", slog.Int("files", len(files)))

	lg, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	defer func() { _ = lg.Sync() }()

	store, err := app.OpenStore(ctx, lg, cfg)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	st, err := customerimport.Run(zctx.Base(ctx, lg), store.Services(cfg.Orders).Customers, files,
		customerimport.Options{Capacity: capacity})
	if err != nil {
		return errors.Wrap(err, "import")
	}

	slog.Info("import summary",
		slog.Int("read", st.Read),
		slog.Int("registered", st.Registered),
		slog.Int("existing", st.Existing),
		slog.Int("repeated", st.Repeated),
		slog.Int("invalid", st.Invalid),
		slog.Int("malformed", st.Malformed),
	)
	return nil
}
