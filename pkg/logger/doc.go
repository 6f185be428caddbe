// Package logger provides structured logging for the datafeed connector.
//
// It wraps zerolog behind a small interface so components can attach fields
// without depending on the zerolog API directly:
//
//	logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("component", "sync")
//	log.InfoWithFields("report dispatched", map[string]interface{}{
//	    "filename": desc.Filename,
//	    "stream":   string(desc.ReportType),
//	})
package logger
