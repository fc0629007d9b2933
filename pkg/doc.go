// Package scd propagates a single declared version number into every file of
// a project that mentions it.
//
// A configuration file (JSON, YAML or TOML, discovered as .scd.json,
// scd.yaml and friends in the working directory or any parent) declares the
// version number, the versioning scheme it follows, and for each file an
// ordered list of search/replace rules. The version is parsed once into a
// context of named fields (major, next_minor, prerelease, full and so on),
// each rule's search pattern is compiled to a regular expression and its
// replacement template is rendered with that context, and the rules are
// applied line by line.
//
// It provides functionalities for:
//   - Parsing versions under the semver, pep440, git_semver and git_pep440 schemes.
//   - Named and raw search patterns and replacement templates, with defaults.
//   - Restricting a run to some files or to named groups of files.
//   - Dry runs that report every line that would change.
//
// Usage Example:
//
//	import (
//	    "context"
//	    "log"
//
//	    scd "github.com/bcomnes/scd/pkg"
//	)
//
//	func main() {
//	    meta, err := scd.Run(context.Background(), scd.Options{})
//	    if err != nil {
//	        log.Fatalf("version update failed: %v", err)
//	    }
//	    log.Printf("set %s in %v", meta.FullVersion, meta.UpdatedFiles)
//	}
//
// The scd command in the repository root is a thin CLI over Run and DryRun.
package scd
