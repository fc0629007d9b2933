package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scderrors "github.com/bcomnes/scd/pkg/errors"
)

func TestParseSemVer(t *testing.T) {
	v, err := ParseSemVer("1.2.0-pre1+0")
	require.NoError(t, err)

	assert.Equal(t, 1, v.Major)
	assert.Equal(t, 2, v.Minor)
	assert.Equal(t, 0, v.Patch)
	assert.Equal(t, "pre1", v.Prerelease)
	assert.Equal(t, "0", v.Build)
	assert.Equal(t, "1.2.0-pre1+0", v.Full())

	c := v.Context()
	want := map[string]any{
		"major":           1,
		"next_major":      2,
		"prev_major":      0,
		"minor":           2,
		"patch":           0,
		"prev_patch":      0,
		"prerelease":      "pre1",
		"next_prerelease": "pre2",
		"prev_prerelease": "pre0",
		"build":           "0",
		"next_build":      "1",
		"prev_build":      "0",
	}
	for k, expected := range want {
		got, ok := c.Get(k)
		require.True(t, ok, "missing %s", k)
		assert.Equal(t, expected, got, k)
	}
}

func TestSemVerContextKeys(t *testing.T) {
	v, err := ParseSemVer("0.1.0")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"base", "full",
		"major", "next_major", "prev_major",
		"minor", "next_minor", "prev_minor",
		"patch", "next_patch", "prev_patch",
		"prerelease", "next_prerelease", "prev_prerelease",
		"build", "next_build", "prev_build",
	}, v.Context().Keys())

	prerelease, _ := v.Context().Get("next_prerelease")
	assert.Equal(t, "", prerelease, "empty text stays empty")
}

func TestParseSemVerInvalid(t *testing.T) {
	for _, in := range []string{"", "0", "0.", "0.1", "0.1.", "0..", "0.1.0rc1", "v1.2.3", "01.2.3", "1.2.3-01", "1.2.3+"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSemVer(in)
			require.Error(t, err)
			assert.True(t, scderrors.IsCode(err, scderrors.ErrCodeParse))
		})
	}
}

func TestSemVerRoundTrip(t *testing.T) {
	for _, in := range []string{"0.0.0", "1.2.3", "1.0.0-alpha.1", "1.0.0-rc.1+build.5", "10.20.30+meta-data"} {
		v, err := ParseSemVer(in)
		require.NoError(t, err)

		again, err := ParseSemVer(v.Full())
		require.NoError(t, err)
		assert.Equal(t, v.Context().Map(), again.Context().Map(), in)
	}
}

func FuzzParseSemVer(f *testing.F) {
	for _, seed := range []string{"1.2.3", "1.2.0-pre1+0", "0.0.0-0", "bad", "1.2"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		v, err := ParseSemVer(in)
		if err != nil {
			return
		}
		again, err := ParseSemVer(v.Full())
		if err != nil {
			t.Fatalf("re-parse of %q (from %q) failed: %v", v.Full(), in, err)
		}
		if again.Full() != v.Full() {
			t.Fatalf("round trip changed %q to %q", v.Full(), again.Full())
		}
	})
}
