package scheme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

type fakeQuerier struct {
	distance    int
	hasDistance bool
	commit      string
	calls       int
}

func (f *fakeQuerier) TagDistance(_ context.Context, _, _ string) (int, bool) {
	f.calls++
	return f.distance, f.hasDistance
}

func (f *fakeQuerier) CurrentCommit(_ context.Context, _ string) (string, bool) {
	f.calls++
	return f.commit, f.commit != ""
}

func TestNames(t *testing.T) {
	names := Names()
	for _, want := range []string{"git_pep440", "git_semver", "pep440", "semver"} {
		assert.Contains(t, names, want)
	}
	assert.IsIncreasing(t, names)
}

func TestParseUnknownScheme(t *testing.T) {
	_, err := Parse("calver", "2024.1")
	require.Error(t, err)
	assert.True(t, scderrors.IsCode(err, scderrors.ErrCodeConfig))
}

func TestParseGitSchemeWithoutVCS(t *testing.T) {
	v, err := Parse("git_semver", "1.2.3-rc1+abc")
	require.NoError(t, err)
	assert.Equal(t, "git_semver", v.Scheme())
	assert.Equal(t, "1.2.3-rc1+abc", v.Full())
}

func TestRegisterDuplicate(t *testing.T) {
	err := Register(Scheme{
		Name:    "semver",
		Grammar: `\d+`,
		Parse:   func(string, Overlay) (Version, error) { return nil, nil },
	})
	require.Error(t, err)
	assert.True(t, scderrors.IsCode(err, scderrors.ErrCodeConfig))
}

func TestRegisterCustom(t *testing.T) {
	err := Register(Scheme{
		Name:    "test_plain",
		Grammar: `\d+`,
		Parse: func(base string, _ Overlay) (Version, error) {
			return ParseSemVer(base + ".0.0")
		},
	})
	require.NoError(t, err)

	v, err := Parse("test_plain", "4")
	require.NoError(t, err)
	assert.Equal(t, "4.0.0", v.Full())
	assert.Equal(t, `\d+`, Grammars()["test_plain"])
}

func TestGitSemVerOverlay(t *testing.T) {
	q := &fakeQuerier{distance: 3, hasDistance: true, commit: "abc1234"}
	r := NewResolver(q, "/repo", "")

	v, err := r.Resolve(context.Background(), "git_semver", "1.2.0-pre1+5")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0-3+abc1234", v.Full())

	c := v.Context()
	pre, _ := c.Get("prerelease")
	assert.Equal(t, "3", pre)
	next, _ := c.Get("next_prerelease")
	assert.Equal(t, "4", next)
	build, _ := c.Get("build")
	assert.Equal(t, "abc1234", build)
	nextBuild, _ := c.Get("next_build")
	assert.Equal(t, "", nextBuild)
	base, _ := c.Get("base")
	assert.Equal(t, "1.2.0-pre1+5", base)
}

func TestGitSemVerUnknownVCS(t *testing.T) {
	r := NewResolver(&fakeQuerier{}, "/repo", "v*")

	v, err := r.Resolve(context.Background(), "git_semver", "1.2.0-pre1+5")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0-pre1+5", v.Full())

	nextBuild, _ := v.Context().Get("next_build")
	assert.Equal(t, "6", nextBuild)
}

func TestGitSemVerOnTag(t *testing.T) {
	r := NewResolver(&fakeQuerier{hasDistance: true}, "/repo", "v*")

	v, err := r.Resolve(context.Background(), "git_semver", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-0", v.Full())
}

func TestGitPEP440Overlay(t *testing.T) {
	q := &fakeQuerier{distance: 7, hasDistance: true, commit: "deadbee"}
	r := NewResolver(q, "/repo", "")

	v, err := r.Resolve(context.Background(), "git_pep440", "1.2.0rc1+local")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0rc1.dev7+deadbee.local", v.Full())

	gv, ok := v.(*GitPEP440)
	require.True(t, ok)
	assert.Equal(t, "1.2.0rc1.post0.dev7+deadbee.local", gv.Maximum())

	c := v.Context()
	dev, _ := c.Get("dev")
	assert.Equal(t, 7, dev)
	prevDev, _ := c.Get("prev_dev")
	assert.Equal(t, 6, prevDev)
}

func TestGitPEP440NoLocal(t *testing.T) {
	q := &fakeQuerier{commit: "deadbee"}
	v, err := NewResolver(q, "/repo", "").Resolve(context.Background(), "git_pep440", "2.0.dev3")
	require.NoError(t, err)
	assert.Equal(t, "2.0.dev3+deadbee", v.Full())
}

func TestResolverSkipsVCSForPlainSchemes(t *testing.T) {
	q := &fakeQuerier{distance: 1, hasDistance: true, commit: "abc"}
	r := NewResolver(q, "/repo", "")

	v, err := r.Resolve(context.Background(), "semver", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.Full())
	assert.Zero(t, q.calls)
}

func TestResolverCaches(t *testing.T) {
	r := NewResolver(nil, "", "")

	a, err := r.Resolve(context.Background(), "pep440", "1.0")
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), "pep440", "1.0")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = r.Resolve(context.Background(), "pep440", "not a version")
	require.Error(t, err)
	assert.True(t, scderrors.IsCode(err, scderrors.ErrCodeParse))
}
