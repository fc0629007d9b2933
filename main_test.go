package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scd "github.com/bcomnes/scd/pkg"
	"github.com/bcomnes/scd/pkg/substitute"
)

// runApp executes the command in-process and returns what it printed.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{name}, args...))
	return stdout.String(), stderr.String(), err
}

func TestPrintContext(t *testing.T) {
	dir := writeProject(t)

	out, _, err := runApp(t, "-c", filepath.Join(dir, ".scd.yaml"), "--print-context", "-x", "channel=stable")
	require.NoError(t, err)
	assert.Contains(t, out, "base: 1.2.3\n")
	assert.Contains(t, out, "major: 1\n")
	assert.Contains(t, out, "next_minor: 3\n")
	assert.Contains(t, out, "channel: stable\n")

	// Nothing is written when only printing the context.
	contents, err := os.ReadFile(filepath.Join(dir, "version.go"))
	require.NoError(t, err)
	assert.Equal(t, versionFile, string(contents))
}

func TestAppExtraContextCollision(t *testing.T) {
	dir := writeProject(t)

	_, _, err := runApp(t, "-c", filepath.Join(dir, ".scd.yaml"), "-x", "major=9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "major")
}

func TestAppUnknownGroup(t *testing.T) {
	dir := writeProject(t)

	_, _, err := runApp(t, "-c", filepath.Join(dir, ".scd.yaml"), "-g", "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs")
}

func TestAppInvalidLogFormat(t *testing.T) {
	dir := writeProject(t)

	_, _, err := runApp(t, "-c", filepath.Join(dir, ".scd.yaml"), "--log-format", "xml")
	require.Error(t, err)
}

func TestAppDebugLogging(t *testing.T) {
	dir := writeProject(t)

	_, stderr, err := runApp(t, "-c", filepath.Join(dir, ".scd.yaml"), "-d", "-n", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"level":"DEBUG"`)
	assert.Contains(t, stderr, `"module":"scd"`)
}

func TestParseExtraContext(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{name: "single", pairs: []string{"channel=stable"}, want: map[string]any{"channel": "stable"}},
		{name: "value with equals", pairs: []string{"expr=a=b"}, want: map[string]any{"expr": "a=b"}},
		{name: "value with comma", pairs: []string{"list=a,b"}, want: map[string]any{"list": "a,b"}},
		{name: "empty value", pairs: []string{"suffix="}, want: map[string]any{"suffix": ""}},
		{name: "missing equals", pairs: []string{"channel"}, wantErr: true},
		{name: "empty key", pairs: []string{"=stable"}, wantErr: true},
		{name: "duplicate key", pairs: []string{"a=1", "a=2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtraContext(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintSummary(t *testing.T) {
	meta := scd.RunMeta{
		ConfigPath:   "/p/.scd.yaml",
		Scheme:       "semver",
		BaseVersion:  "1.2.3",
		FullVersion:  "1.2.3",
		UpdatedFiles: []string{"a"},
		Results: []*substitute.Result{
			{Name: "a", Changed: true, Changes: []substitute.LineChange{{Line: 2, Before: "v=1.0.0", After: "v=1.2.3"}}},
			{Name: "b"},
		},
	}

	t.Run("run", func(t *testing.T) {
		var buf bytes.Buffer
		printSummary(&buf, meta)
		out := buf.String()
		assert.Contains(t, out, "Files updated:\n  a\n")
		assert.NotContains(t, out, "  b\n")
		assert.NotContains(t, out, "-v=1.0.0")
	})

	t.Run("dry run", func(t *testing.T) {
		dry := meta
		dry.DryRun = true
		var buf bytes.Buffer
		printSummary(&buf, dry)
		out := buf.String()
		assert.Contains(t, out, "Files that would be updated:")
		assert.Contains(t, out, "    2: -v=1.0.0\n    2: +v=1.2.3\n")
	})

	t.Run("nothing to do", func(t *testing.T) {
		var buf bytes.Buffer
		printSummary(&buf, scd.RunMeta{Scheme: "semver"})
		assert.Contains(t, buf.String(), "No files needed changes.")
	})
}
