// Package logger builds *slog.Logger instances with consistent attribute
// names across the service.
//
// New creates a logger from functional options (format, level, static
// attributes, context extractors). The handler is wrapped in a decorator that
// runs every registered ContextExtractor on each record, so request-scoped
// values such as the request id appear without threading them by hand.
//
// Attribute helpers in attr.go (Error, UserID, Email, Component, ...) keep key
// names uniform. Email masks the local part; credentials must never be logged.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.Name),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "user created", logger.UserID(u.ID), logger.Component("reconciler"))
package logger
