// Package logger builds configured slog.Logger instances for the service.
//
// Defaults are production-safe: JSON output at INFO level on stdout.
// Development mode switches to human-readable text output at DEBUG level.
// Attribute helpers keep log field names consistent across packages.
//
// Example:
//
//	log := logger.New(logger.WithDevelopment("cyphervault"))
//	logger.SetAsDefault(log)
//	log.Info("file stored", logger.UserID(userID), logger.FileID(fileID))
package logger
