// Package logger is the structured logging layer, built on zerolog.
//
// Records are JSON or console formatted and always carry the service name.
// Components derive tagged loggers, and WithContext adds the request ID,
// job ID and active trace span found in a context.
//
//	logging:
//	  level: info
//	  format: json
//
//	log := logger.WithComponent("whisper")
//	log.Info("engine finished", logger.Fields(logger.FieldExitCode, 0))
package logger
