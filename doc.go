// Package main implements the scd CLI tool.
//
// scd propagates a single project version into every file that mentions it.
// The version and the target files are declared in a configuration file; scd
// renders each file's search patterns into regular expressions, renders the
// replacement templates against the version context, and rewrites matching
// text line by line.
//
// Command Usage:
//
//	scd [options] [FILE_PATH...]
//
// Flags:
//
//	-c, --config:        Path to the configuration file. When omitted scd looks
//	                     for .scd.json, scd.json, .scd.yaml, scd.yaml, .scd.yml,
//	                     scd.yml, .scd.toml or scd.toml in the working directory
//	                     and its parents.
//	-n, --dry-run:       Report the lines that would change without writing.
//	-g, --group:         Only process files matching a configured group. May be
//	                     repeated.
//	-x, --extra-context: Add key=value to the template context. May be repeated.
//	--print-context:     Print the version context as YAML and exit.
//	-v, --verbose:       Log at info level.
//	-d, --debug:         Log at debug level.
//	--log-format:        text (default) or json.
//	--version:           Print the scd version and exit.
//
// A minimal configuration:
//
//	version:
//	  scheme: semver
//	  number: 1.2.3
//	files:
//	  version.go:
//	    - search_raw: '(?<=Version\s=\s"){{ semver }}'
//	      replace: base
//	  chart/Chart.yaml:
//	    - search: full
//
// Supported schemes are semver, pep440, git_semver and git_pep440. The git
// schemes append the commit distance from the most recent tag and the current
// commit hash, and fall back to the plain scheme when git is unavailable.
//
// Examples:
//
//	# Substitute the version into every configured file
//	scd
//
//	# Show what would change
//	scd --dry-run
//
//	# Only touch the files of the "docs" group
//	scd -g docs
//
//	# Provide an extra template variable
//	scd -x channel=stable
//
// For the library API see the documentation of the "pkg" package.
package main
