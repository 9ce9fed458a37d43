// Package log provides a concurrency-safe structured logger based on
// [log/slog].
//
// The zero value of [Logger] is valid and discards everything, so library
// packages (conf, function, form) accept a Logger through a WithLogger option
// and log unconditionally at trace or debug level.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("model built", slog.Int("controls", 12))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger that the CLI reconfigures with [Config] while parsing flags.
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] sits below debug and is used
// for per-token and per-recomputation detail.
package log
