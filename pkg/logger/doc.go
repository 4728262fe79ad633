// Package logger is a small factory around log/slog.
//
// It exists so every binary configures logging the same way: JSON at info
// level by default, text at debug level in development, with static
// attributes (service name, version) attached once at construction. All
// components in this module accept a *slog.Logger at construction instead of
// using the global default.
//
//	log := logger.New(logger.WithDevelopment("shopcli"))
//	log.Info("starting", slog.String("base_url", cfg.BaseURL))
package logger
