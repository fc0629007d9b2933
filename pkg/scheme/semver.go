package scheme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

// SemVerGrammar matches a semver.org 2.0.0 version anywhere in a line. It has
// no capture groups so it can be embedded in larger search patterns.
const SemVerGrammar = `(?:0|[1-9]\d*)\.(?:0|[1-9]\d*)\.(?:0|[1-9]\d*)` +
	`(?:-(?:(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+(?:[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?`

var semverRE = regexp.MustCompile(`^(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<patch>0|[1-9]\d*)` +
	`(?:-(?P<prerelease>(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
	`(?:\+(?P<buildmetadata>[0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// SemVer is a parsed semantic version.
type SemVer struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string

	base string
}

// ParseSemVer parses base as a semantic version. A leading "v" is not
// accepted, and all three numeric components are required.
func ParseSemVer(base string) (*SemVer, error) {
	m := semverRE.FindStringSubmatch(base)
	if m == nil || !semver.IsValid("v"+base) {
		return nil, parseError("semver", base, nil)
	}

	v := &SemVer{base: base}
	var err error
	if v.Major, err = strconv.Atoi(m[semverRE.SubexpIndex("major")]); err != nil {
		return nil, parseError("semver", base, err)
	}
	if v.Minor, err = strconv.Atoi(m[semverRE.SubexpIndex("minor")]); err != nil {
		return nil, parseError("semver", base, err)
	}
	if v.Patch, err = strconv.Atoi(m[semverRE.SubexpIndex("patch")]); err != nil {
		return nil, parseError("semver", base, err)
	}
	v.Prerelease = strings.TrimPrefix(semver.Prerelease("v"+base), "-")
	v.Build = strings.TrimPrefix(semver.Build("v"+base), "+")
	return v, nil
}

func (v *SemVer) Scheme() string { return "semver" }
func (v *SemVer) Base() string { return v.base }

// Full renders major.minor.patch[-prerelease][+build].
func (v *SemVer) Full() string {
	return renderSemVer(v.Major, v.Minor, v.Patch, v.Prerelease, v.Build)
}

func (v *SemVer) Context() *Context {
	return semverContext(v.base, v.Full(), v, v.Prerelease, v.Build, true)
}

func renderSemVer(major, minor, patch int, prerelease, build string) string {
	s := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if prerelease != "" {
		s += "-" + prerelease
	}
	if build != "" {
		s += "+" + build
	}
	return s
}

// semverContext builds the context shared by semver and git_semver. When
// deriveBuild is false the build field holds a commit hash and has no
// meaningful neighbours.
func semverContext(base, full string, v *SemVer, prerelease, build string, deriveBuild bool) *Context {
	c := NewContext()
	c.Set("base", base)
	c.Set("full", full)
	setInt(c, "major", v.Major)
	setInt(c, "minor", v.Minor)
	setInt(c, "patch", v.Patch)
	setText(c, "prerelease", prerelease)
	if deriveBuild {
		setText(c, "build", build)
	} else {
		c.Set("build", build)
		c.Set("next_build", "")
		c.Set("prev_build", "")
	}
	return c
}

func setInt(c *Context, name string, x int) {
	c.Set(name, x)
	c.Set("next_"+name, nextInt(x))
	c.Set("prev_"+name, prevInt(x))
}

func setText(c *Context, name, s string) {
	c.Set(name, s)
	c.Set("next_"+name, NextText(s))
	c.Set("prev_"+name, PrevText(s))
}

func parseError(scheme, base string, cause error) error {
	msg := fmt.Sprintf("version %q is not a valid %s version", base, scheme)
	ctx := map[string]any{"scheme": scheme, "number": base}
	if cause != nil {
		return scderrors.WrapWithContext(scderrors.ErrCodeParse, msg, cause, ctx)
	}
	return scderrors.NewWithContext(scderrors.ErrCodeParse, msg, ctx)
}
