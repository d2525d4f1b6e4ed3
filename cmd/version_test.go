package cmd

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		short   bool
		want    []string
	}{
		{
			name:    "full",
			version: "1.2.3",
			want:    []string{"strata version 1.2.3\n", runtime.Version(), "required, optional, runtime, enhances"},
		},
		{
			name:    "empty version",
			version: "",
			want:    []string{"strata version unknown\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatVersion(tt.version, tt.short)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}

	assert.Equal(t, "1.2.3\n", formatVersion("1.2.3", true))
	assert.Equal(t, "unknown\n", formatVersion("", true))
}

func TestVersionCommand(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = "0.4.0"
	dir := writeDefinitions(t, "", nil)

	out, err := executeCommand(t, "version", "--config-path", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "strata version 0.4.0\n"))
	assert.Contains(t, out, "dependency kinds:")

	out, err = executeCommand(t, "version", "--config-path", dir, "--short")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0\n", out)

	_, err = executeCommand(t, "version", "--config-path", dir, "extra")
	assert.Error(t, err)
}
