package app

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/customer"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/order"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/product"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/report"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/domain/restaurant"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/handler"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/storage/postgres"
	"github.com/gfreitas15/delivery-api-gfreitas15/internal/storage/sqlite"
	"github.com/gfreitas15/delivery-api-gfreitas15/pkg/health"
)

// Store bundles the repositories of one backend.
type Store struct {
	Customers   customer.Repository
	Restaurants restaurant.Repository
	Products    product.Repository
	Orders      order.Repository
	Reports     report.Source
	// Pinger reports backend reachability for readiness checks.
	Pinger health.Pinger

	close func()
}

// Close releases the backend connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects to the configured backend and applies its schema.
func OpenStore(ctx context.Context, lg *zap.Logger, cfg *Config) (*Store, error) {
	switch cfg.Store.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Store opened", zap.String("driver", DriverPostgres))
		return &Store{
			Customers:   postgres.NewCustomerRepository(pool),
			Restaurants: postgres.NewRestaurantRepository(pool),
			Products:    postgres.NewProductRepository(pool),
			Orders:      postgres.NewOrderRepository(pool),
			Reports:     postgres.NewReportRepository(pool),
			Pinger:      pool,
			close:       pool.Close,
		}, nil

	case DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		lg.Info("Store opened",
			zap.String("driver", DriverSQLite),
			zap.String("path", cfg.Store.SQLitePath),
			zap.String("sql_driver", sqlite.DriverName),
		)
		orders := sqlite.NewOrderRepository(conn)
		return &Store{
			Customers:   sqlite.NewCustomerRepository(conn),
			Restaurants: sqlite.NewRestaurantRepository(conn),
			Products:    sqlite.NewProductRepository(conn),
			Orders:      orders,
			Reports:     orders,
			Pinger:      sqlPinger{conn},
			close: func() {
				if err := conn.Close(); err != nil {
					lg.Warn("Close sqlite", zap.Error(err))
				}
			},
		}, nil

	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Services builds the domain services over s.
func (s *Store) Services(cfg OrdersConfig) handler.Services {
	return handler.Services{
		Orders: order.NewService(
			s.Customers,
			s.Restaurants,
			s.Products,
			s.Orders,
			order.Calculator{MaxQuantity: cfg.MaxQuantity},
		),
		Customers:   customer.NewService(s.Customers),
		Restaurants: restaurant.NewService(s.Restaurants),
		Products:    product.NewService(s.Products, s.Restaurants),
		Reports:     report.NewService(s.Reports),
	}
}

type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
