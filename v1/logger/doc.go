// Package logger provides the structured logger used across photoindex.
//
// Packages depend on the Logger interface; NewLoggerClient returns the zap
// backed *LoggerClient. Every method takes a message, an optional error and
// optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "indexer"})
//	log.Info("batch committed", nil, map[string]interface{}{"size": 32})
//	log.Warn("scan root missing", err, map[string]interface{}{"root": root})
//
// In fx applications include FXModule and supply a logger.Config. Tests use
// MockLogger, generated with mockgen.
package logger
