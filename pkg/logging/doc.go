// Package logging configures the process-wide slog logger used by scd.
//
// Every record carries the module name, the tool version and a run id, so
// that the output of several invocations (for example from a release
// pipeline) can be told apart:
//
//	logging.SetDefault(logging.Options{
//	    Module:  "scd",
//	    Version: "1.0.0",
//	    Level:   "debug",
//	})
//	slog.Info("processing file", "path", path)
//
// When Level is empty the LOG_LEVEL environment variable is consulted, and
// when that is empty too the level defaults to ERROR, which keeps the CLI
// silent unless something goes wrong. Debug records include the source
// location.
//
// Records go to stderr by default, as text or as JSON (Format "json").
package logging
