package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/config"
	"github.com/dmitrymomot/teamauth/pkg/httpserver"
	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/mongo"
	"github.com/dmitrymomot/teamauth/pkg/pg"
	"github.com/dmitrymomot/teamauth/pkg/redis"
	"github.com/dmitrymomot/teamauth/pkg/userstore"
)

type stores struct {
	users   auth.UserStorage
	states  auth.StateStorage
	checks  map[string]httpserver.Check
	closers []func(context.Context) error
}

func (s *stores) close(log *slog.Logger) {
	ctx := context.Background()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.ErrorContext(ctx, "failed to close store", logger.Error(err))
		}
	}
}

func openStores(ctx context.Context, app appConfig, log *slog.Logger) (st *stores, err error) {
	st = &stores{checks: map[string]httpserver.Check{}}
	defer func() {
		if err != nil {
			st.close(log)
		}
	}()

	// Memory backs whichever tier has no external driver.
	mem := auth.NewMemoryStorage()

	switch app.StoreDriver {
	case "memory", "":
		st.users = mem
	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return st, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return st, err
		}
		st.closers = append(st.closers, db.Client().Disconnect)
		users := userstore.NewMongo(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return st, err
		}
		st.users = users
		st.checks["mongo"] = mongo.Healthcheck(db.Client())
	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return st, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return st, err
		}
		st.closers = append(st.closers, func(context.Context) error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, userstore.Migrations, "migrations", cfg, log); err != nil {
			return st, err
		}
		st.users = userstore.NewPostgres(pool)
		st.checks["postgres"] = pg.Healthcheck(pool)
	default:
		return st, fmt.Errorf("unknown STORE_DRIVER %q", app.StoreDriver)
	}

	switch app.StateDriver {
	case "memory", "":
		st.states = mem
	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return st, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return st, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.states = redis.NewStateStore(client, cfg.KeyPrefix)
		st.checks["redis"] = redis.Healthcheck(client)
	default:
		return st, fmt.Errorf("unknown STATE_DRIVER %q", app.StateDriver)
	}

	log.InfoContext(ctx, "stores ready",
		slog.String("users", app.StoreDriver),
		slog.String("states", app.StateDriver),
	)
	return st, nil
}
