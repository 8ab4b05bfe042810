package account

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/logger"
)

// Exchanger runs the provider handshake for one provider.
type Exchanger interface {
	Provider() auth.AuthProvider
	BeginExchange(ctx context.Context) (string, error)
	CompleteExchange(ctx context.Context, code, state string) (auth.ExchangeResult, error)
}

type exchangeHandlers struct {
	cfg       Config
	exchanges map[auth.AuthProvider]Exchanger
	logger    *slog.Logger
}

func (h exchangeHandlers) lookup(r *http.Request) (Exchanger, bool) {
	ex, ok := h.exchanges[auth.AuthProvider(chi.URLParam(r, "provider"))]
	return ex, ok
}

func (h exchangeHandlers) begin(w http.ResponseWriter, r *http.Request) {
	ex, ok := h.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	target, err := ex.BeginExchange(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to begin exchange",
			logger.Component("account"),
			logger.Provider(string(ex.Provider())),
			logger.Error(err),
		)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// callback ends in exactly one redirect: success with the credential, or failure.
func (h exchangeHandlers) callback(w http.ResponseWriter, r *http.Request) {
	ex, ok := h.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		h.logger.WarnContext(r.Context(), "provider returned an error",
			logger.Component("account"),
			logger.Provider(string(ex.Provider())),
			slog.String("reason", reason),
		)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	res, err := ex.CompleteExchange(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "exchange failed",
			logger.Component("account"),
			logger.Provider(string(ex.Provider())),
			logger.Error(err),
		)
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}

	target, err := withQueryParam(h.cfg.SuccessURL, h.cfg.TokenParam, res.Token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "invalid success url", logger.Error(err))
		http.Redirect(w, r, h.cfg.FailureURL, http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func withQueryParam(raw, key, value string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
