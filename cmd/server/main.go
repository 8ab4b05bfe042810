package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/teamauth/modules/account"
	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/config"
	"github.com/dmitrymomot/teamauth/pkg/httpserver"
	"github.com/dmitrymomot/teamauth/pkg/jwt"
	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/requestid"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	Name        string `env:"APP_NAME" envDefault:"teamauth"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"` // memory, mongo or postgres
	StateDriver string `env:"STATE_DRIVER" envDefault:"memory"` // memory or redis
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "teamauth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	var (
		jwtCfg     jwt.Config
		googleCfg  auth.GoogleOAuthConfig
		accountCfg account.Config
		httpCfg    httpserver.Config
	)
	if err := errors.Join(
		config.Load(&jwtCfg),
		config.Load(&googleCfg),
		config.Load(&accountCfg),
		config.Load(&httpCfg),
	); err != nil {
		return err
	}

	codec, err := jwt.New(jwtCfg)
	if err != nil {
		return fmt.Errorf("credential codec: %w", err)
	}

	st, err := openStores(ctx, app, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	reconciler := auth.NewReconciler(st.users, auth.WithReconcilerLogger(log))
	google := auth.NewExchangeService(
		auth.NewGoogleAdapter(googleCfg),
		reconciler,
		codec,
		st.states,
		auth.WithExchangeLogger(log),
		auth.WithStateTTL(googleCfg.StateTTL),
		auth.WithExchangeTimeout(accountCfg.ExchangeTimeout),
	)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		middleware.RealIP,
		middleware.Recoverer,
	)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 2*time.Second, st.checks))
	r.Mount("/", account.Router(account.RouterOptions{
		Config:        accountCfg,
		Exchanges:     []account.Exchanger{google},
		Profiles:      auth.NewProfileService(st.users, auth.WithProfileLogger(log)),
		Authenticator: auth.NewAuthenticator(codec, st.users, auth.WithAuthenticatorLogger(log)),
		Logger:        log,
	}))

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
