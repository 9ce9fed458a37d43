// Package cli contains the command line interface for formkit.
//
// # Usage
//
//	formkit [flags] <command> [args]
//
// The form command is the default, so a bare document path builds its form:
//
//	formkit order.cfg --set customer=Acme --output yaml
//
// # Commands
//
//   - fmt: reformat a document as native ConfigTree, JSON, YAML or a tree
//   - query: print the nodes of a document with a given name
//   - eval: compile and evaluate a function expression
//   - form: build a form model, apply presets and edits, print its state,
//     optionally editing it interactively
//   - init: write the configuration file from the current flag values
//
// # Configuration File
//
// Flag defaults are read from a file named config in the user configuration
// directory, written in the ConfigTree language ([resolve]):
//
//	config(
//	  log_level "debug"
//	  include_path("/etc/formkit")
//	)
//
// A config.json file next to it is read as well. Command-line flags
// override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o formkit .
//
// which adds the flags:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/formkit/pprof)
package cli
