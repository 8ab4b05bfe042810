package account

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/logger"
)

// RouterOptions configures the account module.
type RouterOptions struct {
	Config        Config
	Exchanges     []Exchanger
	Profiles      ProfileManager
	Authenticator *auth.Authenticator
	Logger        *slog.Logger
}

// Router mounts the exchange and profile endpoints under /auth:
//
//	GET  /auth/{provider}           redirect to the provider consent screen
//	GET  /auth/{provider}/callback  redirect to the success or failure URL
//	GET  /auth/profile              read profile (bearer)
//	PUT  /auth/profile              update fullName/avatar (bearer)
//	POST /auth/profile/complete     record onboarding completion (bearer)
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	if opts.Config.TokenParam == "" {
		opts.Config.TokenParam = "token"
	}

	ex := exchangeHandlers{
		cfg:       opts.Config,
		exchanges: make(map[auth.AuthProvider]Exchanger, len(opts.Exchanges)),
		logger:    log,
	}
	for _, e := range opts.Exchanges {
		ex.exchanges[e.Provider()] = e
	}
	ph := profileHandlers{profiles: opts.Profiles, logger: log}

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Get("/profile", opts.Authenticator.Protect(ph.get))
		r.Put("/profile", opts.Authenticator.Protect(ph.update))
		r.Post("/profile/complete", opts.Authenticator.Protect(ph.complete))

		r.Get("/{provider}", ex.begin)
		r.Get("/{provider}/callback", ex.callback)
	})
	return r
}
