// Package httpserver runs the API's http.Server with graceful shutdown and
// exposes liveness and readiness handlers.
//
// Run blocks until the context is canceled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests within the shutdown timeout. The
// write timeout must stay above the provider exchange timeout, otherwise a
// slow callback is cut off before it can redirect.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are joined with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
