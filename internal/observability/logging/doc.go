// Package logging provides structured logging utilities built on log/slog.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	logger.Info("analysis started", slog.String("product", product))
//
//	func handle(ctx context.Context) {
//	    logger := logging.WithTrace(ctx, logging.WithRequestID(ctx, slog.Default()))
//	    logger.Info("processing request")
//	}
package logging
