package scheme

import (
	"strconv"
)

// Overlay carries the VCS-derived values a git-aware scheme layers over its
// parsed version. The zero Overlay means nothing is known.
type Overlay struct {
	Distance    int
	HasDistance bool
	Commit      string
}

// HasCommit reports whether a HEAD commit id is known.
func (o Overlay) HasCommit() bool {
	return o.Commit != ""
}

// GitSemVer is a semantic version whose prerelease and build are taken from
// the repository: prerelease becomes the commit distance from the last
// matching tag, build becomes the short HEAD hash.
type GitSemVer struct {
	SemVer *SemVer
	VCS    Overlay
}

// NewGitSemVer overlays o on v.
func NewGitSemVer(v *SemVer, o Overlay) *GitSemVer {
	return &GitSemVer{SemVer: v, VCS: o}
}

func (v *GitSemVer) Scheme() string { return "git_semver" }
func (v *GitSemVer) Base() string { return v.SemVer.base }

// Prerelease is the distance text when known, otherwise the parsed value.
func (v *GitSemVer) Prerelease() string {
	if v.VCS.HasDistance {
		return strconv.Itoa(v.VCS.Distance)
	}
	return v.SemVer.Prerelease
}

// Build is the commit id when known, otherwise the parsed value.
func (v *GitSemVer) Build() string {
	if v.VCS.HasCommit() {
		return v.VCS.Commit
	}
	return v.SemVer.Build
}

func (v *GitSemVer) Full() string {
	s := v.SemVer
	return renderSemVer(s.Major, s.Minor, s.Patch, v.Prerelease(), v.Build())
}

func (v *GitSemVer) Context() *Context {
	return semverContext(v.Base(), v.Full(), v.SemVer, v.Prerelease(), v.Build(), !v.VCS.HasCommit())
}

// GitPEP440 is a release version whose dev segment is the commit distance
// and whose local segment is prefixed with the short HEAD hash.
type GitPEP440 struct {
	PEP440 *PEP440
	VCS    Overlay
}

// NewGitPEP440 overlays o on v.
func NewGitPEP440(v *PEP440, o Overlay) *GitPEP440 {
	return &GitPEP440{PEP440: v, VCS: o}
}

func (v *GitPEP440) Scheme() string { return "git_pep440" }
func (v *GitPEP440) Base() string { return v.PEP440.base }

// Dev is the distance when known, otherwise the parsed value.
func (v *GitPEP440) Dev() int {
	if v.VCS.HasDistance {
		return v.VCS.Distance
	}
	return v.PEP440.Dev
}

// Local is commit[.parsed-local] when the commit is known.
func (v *GitPEP440) Local() string {
	if !v.VCS.HasCommit() {
		return v.PEP440.Local
	}
	if v.PEP440.Local == "" {
		return v.VCS.Commit
	}
	return v.VCS.Commit + "." + v.PEP440.Local
}

func (v *GitPEP440) Full() string {
	return v.PEP440.render(v.Dev(), v.Local(), false)
}

func (v *GitPEP440) Maximum() string {
	return v.PEP440.render(v.Dev(), v.Local(), true)
}

func (v *GitPEP440) Context() *Context {
	return pep440Context(v.PEP440, v.Full(), v.Maximum(), v.Dev(), v.Local())
}
