// Package errors defines the error taxonomy shared by every scd package.
//
// All fatal conditions are reported as a *StructuredError carrying one of the
// codes below. Callers branch on the code with IsCode rather than on message
// text:
//
//	if errors.IsCode(err, errors.ErrCodeParse) {
//	    // the configured version number does not match its scheme
//	}
//
// ErrCodeVCSUnavailable is the only non-fatal code. It is produced by the git
// collaborator for logging purposes and never escapes a run.
package errors
