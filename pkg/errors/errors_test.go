package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfig, "missing version.number")

	assert.Equal(t, ErrCodeConfig, err.Code)
	assert.Equal(t, "missing version.number", err.Message)
	assert.Nil(t, err.Cause)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("unexpected token")
	err := Wrap(ErrCodePattern, "cannot compile search pattern", cause)

	assert.Equal(t, ErrCodePattern, err.Code)
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrapWithContext(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapWithContext(ErrCodeAccess, "cannot open file", cause, map[string]any{
		"path": "/tmp/VERSION",
	})

	require.NotNil(t, err.Context)
	assert.Equal(t, "/tmp/VERSION", err.Context["path"])
	assert.Contains(t, err.LogAttrs(), "/tmp/VERSION")
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeParse, "bad version"),
			expected: "[PARSE_ERROR] bad version",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeAccess, "failed", stderrors.New("root cause")),
			expected: "[ACCESS_ERROR] failed: root cause",
		},
		{
			name:     "formatted",
			err:      Newf(ErrCodeConfig, "unknown scheme %q", "calver"),
			expected: `[CONFIG_ERROR] unknown scheme "calver"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsCode(t *testing.T) {
	parse := New(ErrCodeParse, "bad version")
	wrapped := fmt.Errorf("loading: %w", parse)
	nested := Wrap(ErrCodeConfig, "invalid config", parse)
	joined := Wrap(ErrCodeAccess, "pre-flight failed", stderrors.Join(
		New(ErrCodeAccess, "a"),
		New(ErrCodeAccess, "b"),
	))

	assert.True(t, IsCode(parse, ErrCodeParse))
	assert.True(t, IsCode(wrapped, ErrCodeParse))
	assert.True(t, IsCode(nested, ErrCodeConfig))
	assert.True(t, IsCode(nested, ErrCodeParse))
	assert.True(t, IsCode(joined, ErrCodeAccess))
	assert.False(t, IsCode(parse, ErrCodeConfig))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeConfig))
	assert.False(t, IsCode(nil, ErrCodeConfig))

	mixed := stderrors.Join(New(ErrCodeConfig, "a"), fmt.Errorf("b: %w", New(ErrCodePattern, "c")))
	assert.True(t, IsCode(mixed, ErrCodePattern))
}
