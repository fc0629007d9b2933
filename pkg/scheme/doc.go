// Package scheme parses version numbers under a named versioning scheme and
// exposes them as an ordered context of named fields for templating.
//
// Four schemes are built in:
//
//	semver      semantic versioning 2.0.0
//	pep440      PEP 440 release versions
//	git_semver  semver with prerelease/build taken from git
//	git_pep440  pep440 with dev/local taken from git
//
// Every integer field X gets next_X = X+1 and prev_X = max(0, X-1). Semver
// prerelease and build are text; their rightmost digit run is incremented or
// decremented, and text without digits is left as is.
//
// Additional schemes can be added with Register.
package scheme
