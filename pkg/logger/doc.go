// Package logger builds log/slog loggers with consistent defaults for the
// application: JSON output for production, text for development, optional
// static attributes attached to every record.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatJSON),
//	    logger.WithLevel(slog.LevelInfo),
//	    logger.WithService("filingdesk-api"),
//	)
package logger
