package account

import "time"

// Config holds the browser-facing redirect targets of the exchange.
type Config struct {
	SuccessURL      string        `env:"AUTH_SUCCESS_URL,required"`
	FailureURL      string        `env:"AUTH_FAILURE_URL,required"`
	TokenParam      string        `env:"AUTH_TOKEN_PARAM" envDefault:"token"`
	ExchangeTimeout time.Duration `env:"AUTH_EXCHANGE_TIMEOUT" envDefault:"15s"`
}
