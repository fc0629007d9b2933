// Package substitute applies resolved search/replace rules to target files.
//
// Files are processed line by line. Every rule of a file runs over every
// line in declared order, so a later rule sees what an earlier one produced.
// Line terminators are kept exactly as found and a file is only rewritten
// when at least one line changed.
package substitute
